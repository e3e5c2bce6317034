package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus estado de cobro de una factura.
type InvoiceStatus string

// Estados de factura. paid y partially_paid se derivan del saldo;
// draft, cancelled y overdue son marcas del ciclo de vida.
const (
	InvoiceStatusDraft         InvoiceStatus = "draft"
	InvoiceStatusPending       InvoiceStatus = "pending"
	InvoiceStatusPartiallyPaid InvoiceStatus = "partially_paid"
	InvoiceStatusPaid          InvoiceStatus = "paid"
	InvoiceStatusCancelled     InvoiceStatus = "cancelled"
	InvoiceStatusOverdue       InvoiceStatus = "overdue"
)

// InvoiceStatuses lista de estados válidos, en orden de ciclo de vida.
var InvoiceStatuses = []InvoiceStatus{
	InvoiceStatusDraft,
	InvoiceStatusPending,
	InvoiceStatusPartiallyPaid,
	InvoiceStatusPaid,
	InvoiceStatusCancelled,
	InvoiceStatusOverdue,
}

// Valid indica si el estado es uno de los conocidos.
func (s InvoiceStatus) Valid() bool {
	for _, st := range InvoiceStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// Invoice representa la cabecera de una factura con sus líneas.
type Invoice struct {
	ID                string
	Number            string // único (INV-YYYYMMDD-NNNN cuando se genera)
	IssueDate         time.Time
	DueDate           *time.Time
	CustomerID        string
	CustomerName      string
	CustomerEmail     string
	Items             []InvoiceLineItem
	Subtotal          decimal.Decimal
	TotalTax          decimal.Decimal
	TotalAmount       decimal.Decimal // round2(Subtotal + TotalTax)
	OutstandingAmount decimal.Decimal // siempre en [0, TotalAmount]
	Status            InvoiceStatus
	Notes             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TotalPaid importe cobrado hasta ahora (total - saldo).
func (inv Invoice) TotalPaid() decimal.Decimal {
	return inv.TotalAmount.Sub(inv.OutstandingAmount)
}

// HasPayments indica si la factura ya recibió algún pago.
func (inv Invoice) HasPayments() bool {
	return inv.OutstandingAmount.LessThan(inv.TotalAmount)
}

// IsPastDue indica si la fecha de vencimiento pasó y queda saldo por cobrar.
func (inv Invoice) IsPastDue(now time.Time) bool {
	if inv.DueDate == nil || !inv.OutstandingAmount.IsPositive() {
		return false
	}
	return inv.DueDate.Before(now)
}

// InvoiceLineItem representa una línea de detalle de una factura.
type InvoiceLineItem struct {
	ID          string
	InvoiceID   string
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal // round2(Quantity * UnitPrice)
	TaxRate     decimal.Decimal // fracción 0..1
	TaxAmount   decimal.Decimal // round2(LineTotal * TaxRate)
	CreatedAt   time.Time
}
