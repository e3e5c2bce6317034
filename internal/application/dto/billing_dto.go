package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateInvoiceRequest body para POST /api/invoices.
// InvoiceNumber opcional; si va vacío se genera INV-YYYYMMDD-NNNN.
type CreateInvoiceRequest struct {
	InvoiceNumber string               `json:"invoice_number,omitempty" validate:"omitempty,max=50"`
	IssueDate     *time.Time           `json:"issue_date,omitempty"`
	DueDate       *time.Time           `json:"due_date,omitempty"`
	CustomerID    string               `json:"customer_id,omitempty" validate:"omitempty,max=100"`
	CustomerName  string               `json:"customer_name,omitempty" validate:"omitempty,max=200"`
	CustomerEmail string               `json:"customer_email,omitempty" validate:"omitempty,email"`
	Notes         string               `json:"notes,omitempty" validate:"omitempty,max=2000"`
	Items         []InvoiceItemRequest `json:"items" validate:"required,min=1,dive"`
}

// InvoiceItemRequest línea de factura. TaxRate null usa la tasa por defecto.
type InvoiceItemRequest struct {
	Description string              `json:"description" validate:"required,max=500"`
	Quantity    decimal.Decimal     `json:"quantity"`
	UnitPrice   decimal.Decimal     `json:"unit_price"`
	TaxRate     decimal.NullDecimal `json:"tax_rate"`
}

// UpdateInvoiceRequest body para PUT /api/invoices/:id. Solo campos de cabecera;
// las líneas y el saldo no se editan.
type UpdateInvoiceRequest struct {
	DueDate       *time.Time `json:"due_date,omitempty"`
	CustomerName  *string    `json:"customer_name,omitempty" validate:"omitempty,max=200"`
	CustomerEmail *string    `json:"customer_email,omitempty" validate:"omitempty,email"`
	Notes         *string    `json:"notes,omitempty" validate:"omitempty,max=2000"`
	Status        *string    `json:"status,omitempty" validate:"omitempty,oneof=draft pending cancelled overdue"`
}

// InvoiceListQuery filtros de GET /api/invoices.
type InvoiceListQuery struct {
	Status     string `query:"status" validate:"omitempty,oneof=draft pending partially_paid paid cancelled overdue"`
	CustomerID string `query:"customer_id"`
	Limit      int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset     int    `query:"offset" validate:"omitempty,min=0"`
}

// InvoiceResponse factura con líneas.
type InvoiceResponse struct {
	ID                string                `json:"id"`
	InvoiceNumber     string                `json:"invoice_number"`
	IssueDate         time.Time             `json:"issue_date"`
	DueDate           *time.Time            `json:"due_date,omitempty"`
	CustomerID        string                `json:"customer_id,omitempty"`
	CustomerName      string                `json:"customer_name,omitempty"`
	CustomerEmail     string                `json:"customer_email,omitempty"`
	Items             []InvoiceItemResponse `json:"items"`
	Subtotal          decimal.Decimal       `json:"subtotal"`
	TotalTax          decimal.Decimal       `json:"total_tax"`
	TotalAmount       decimal.Decimal       `json:"total_amount"`
	OutstandingAmount decimal.Decimal       `json:"outstanding_amount"`
	TotalPaid         decimal.Decimal       `json:"total_paid"`
	Status            string                `json:"status"`
	Notes             string                `json:"notes,omitempty"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

// InvoiceItemResponse línea de factura en la respuesta.
type InvoiceItemResponse struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
}

// InvoiceStatisticsResponse agregados para GET /api/invoices/statistics.
type InvoiceStatisticsResponse struct {
	Total            int64           `json:"total"`
	Draft            int64           `json:"draft"`
	Pending          int64           `json:"pending"`
	PartiallyPaid    int64           `json:"partially_paid"`
	Paid             int64           `json:"paid"`
	Cancelled        int64           `json:"cancelled"`
	Overdue          int64           `json:"overdue"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
}

// MarkOverdueResponse resultado de POST /api/invoices/mark-overdue.
type MarkOverdueResponse struct {
	Updated int64 `json:"updated"`
}
