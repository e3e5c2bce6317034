package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreatePaymentRequest body para POST /api/payments.
type CreatePaymentRequest struct {
	InvoiceID       string          `json:"invoice_id" validate:"required"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentMethod   string          `json:"payment_method" validate:"required,oneof=cash bank_transfer credit_card debit_card e_wallet"`
	PaymentDate     *time.Time      `json:"payment_date,omitempty"`
	ReferenceNumber string          `json:"reference_number,omitempty" validate:"omitempty,max=100"`
	Notes           string          `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// PaymentListQuery filtros de GET /api/payments.
type PaymentListQuery struct {
	Status        string `query:"status" validate:"omitempty,oneof=pending completed failed cancelled refunded"`
	PaymentMethod string `query:"payment_method" validate:"omitempty,oneof=cash bank_transfer credit_card debit_card e_wallet"`
	Limit         int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset        int    `query:"offset" validate:"omitempty,min=0"`
}

// PaymentResponse pago en respuestas.
type PaymentResponse struct {
	ID              string          `json:"id"`
	InvoiceID       string          `json:"invoice_id"`
	PaymentMethod   string          `json:"payment_method"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentDate     time.Time       `json:"payment_date"`
	ReferenceNumber string          `json:"reference_number"`
	Status          string          `json:"status"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ProcessPaymentResponse resultado de registrar un pago: pago, factura actualizada y recibo.
type ProcessPaymentResponse struct {
	Payment           PaymentResponse `json:"payment"`
	Invoice           InvoiceResponse `json:"invoice"`
	Receipt           ReceiptResponse `json:"receipt"`
	IsFullyPaid       bool            `json:"is_fully_paid"`
	IsOverpayment     bool            `json:"is_overpayment"`
	OverpaymentAmount decimal.Decimal `json:"overpayment_amount"`
	Message           string          `json:"message"`
}

// ReceiptPendingResponse respuesta 202 cuando el pago quedó registrado sin recibo.
type ReceiptPendingResponse struct {
	Code            string `json:"code"`
	Message         string `json:"message"`
	PaymentID       string `json:"payment_id"`
	ReferenceNumber string `json:"reference_number"`
}

// PaymentStatisticsResponse agregados para GET /api/payments/statistics.
type PaymentStatisticsResponse struct {
	Total       int64           `json:"total"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Completed   int64           `json:"completed"`
	Pending     int64           `json:"pending"`
	Failed      int64           `json:"failed"`
}
