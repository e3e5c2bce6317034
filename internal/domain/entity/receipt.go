package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receipt comprobante emitido por un pago (uno por pago).
type Receipt struct {
	ID               string
	PaymentID        string
	InvoiceID        string
	Number           string // único (RCP-{epochMillis}-NNNN)
	ReceiptDate      time.Time
	TotalPaid        decimal.Decimal
	RemainingBalance decimal.Decimal
	Items            []ReceiptLineItem
	PaymentMethod    PaymentMethod
	Notes            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ReceiptLineItem parte del pago asignada a una línea de la factura.
type ReceiptLineItem struct {
	ID            string
	ReceiptID     string
	InvoiceItemID string
	Description   string
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	LineTotal     decimal.Decimal
	TaxAmount     decimal.Decimal
	PaidAmount    decimal.Decimal
	CreatedAt     time.Time
}
