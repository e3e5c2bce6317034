package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiptResponse recibo con el reparto por línea.
type ReceiptResponse struct {
	ID               string                `json:"id"`
	ReceiptNumber    string                `json:"receipt_number"`
	PaymentID        string                `json:"payment_id"`
	InvoiceID        string                `json:"invoice_id"`
	ReceiptDate      time.Time             `json:"receipt_date"`
	TotalPaid        decimal.Decimal       `json:"total_paid"`
	RemainingBalance decimal.Decimal       `json:"remaining_balance"`
	PaymentMethod    string                `json:"payment_method"`
	Notes            string                `json:"notes,omitempty"`
	Items            []ReceiptItemResponse `json:"items"`
	CreatedAt        time.Time             `json:"created_at"`
}

// ReceiptItemResponse línea del recibo.
type ReceiptItemResponse struct {
	ID            string          `json:"id"`
	InvoiceItemID string          `json:"invoice_item_id"`
	Description   string          `json:"description"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	LineTotal     decimal.Decimal `json:"line_total"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
}

// ReconcileResponse resultado de POST /api/receipts/reconcile.
type ReconcileResponse struct {
	Scanned  int      `json:"scanned"`
	Reissued int      `json:"reissued"`
	Failed   []string `json:"failed,omitempty"` // referencias de pago sin recibo tras el intento
}
