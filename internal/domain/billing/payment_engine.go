package billing

import (
	"slices"
	"time"

	"github.com/jhoicas/Billing-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// PaymentRequest datos de un pago a aplicar sobre una factura.
type PaymentRequest struct {
	Amount          decimal.Decimal
	Method          entity.PaymentMethod
	ReferenceNumber string     // vacío: se genera PAY-{epochMillis}-NNNN
	PaymentDate     *time.Time // nil: ahora
	Notes           string
}

// PaymentApplication resultado de aplicar un pago. Nada está persistido todavía.
type PaymentApplication struct {
	Payment           entity.Payment
	Invoice           entity.Invoice // copia de la factura con saldo y estado nuevos
	IsFullyPaid       bool
	IsOverpayment     bool
	OverpaymentAmount decimal.Decimal
}

// PaymentEngine aplica pagos sobre el saldo de una factura (servicio de dominio).
type PaymentEngine struct {
	refs ReferenceGenerator
	now  func() time.Time
}

// NewPaymentEngine crea el motor. refs y now nil usan los valores por defecto.
func NewPaymentEngine(refs ReferenceGenerator, now func() time.Time) *PaymentEngine {
	if refs == nil {
		refs = NewRandomReferenceGenerator()
	}
	if now == nil {
		now = time.Now
	}
	return &PaymentEngine{refs: refs, now: now}
}

// Validate comprueba las precondiciones del pago en orden; devuelve la primera que falla.
func (e *PaymentEngine) Validate(inv entity.Invoice, req PaymentRequest) error {
	switch {
	case !req.Amount.IsPositive():
		return ErrAmountNotPositive
	case req.Amount.GreaterThan(MaxPaymentAmount):
		return ErrAmountExceedsMaximum
	case ExceedsPrecision(req.Amount, 2):
		return ErrAmountPrecision
	case !req.Method.Valid():
		return ErrInvalidPaymentMethod
	case !inv.OutstandingAmount.IsPositive():
		return ErrInvoiceAlreadyPaid
	case inv.Status == entity.InvoiceStatusCancelled:
		return ErrInvoiceCancelled
	}
	return nil
}

// Apply valida el pago y calcula el nuevo saldo y estado de la factura.
// La factura recibida no se modifica.
func (e *PaymentEngine) Apply(inv entity.Invoice, req PaymentRequest) (PaymentApplication, error) {
	if err := e.Validate(inv, req); err != nil {
		return PaymentApplication{}, err
	}
	now := e.now()

	newOutstanding := Round2(inv.OutstandingAmount.Sub(req.Amount))
	isFullyPaid := !newOutstanding.IsPositive()
	isOverpayment := newOutstanding.IsNegative()
	overpayment := decimal.Zero
	if isOverpayment {
		overpayment = newOutstanding.Abs()
	}

	status := inv.Status
	switch {
	case isFullyPaid:
		status = entity.InvoiceStatusPaid
	case newOutstanding.LessThan(inv.TotalAmount):
		status = entity.InvoiceStatusPartiallyPaid
	}

	updated := inv
	updated.Items = slices.Clone(inv.Items)
	updated.OutstandingAmount = decimal.Max(decimal.Zero, newOutstanding)
	updated.Status = status
	updated.UpdatedAt = now

	reference := req.ReferenceNumber
	if reference == "" {
		reference = e.refs.Generate(PrefixPayment, now)
	}
	paymentDate := now
	if req.PaymentDate != nil {
		paymentDate = *req.PaymentDate
	}

	return PaymentApplication{
		Payment: entity.Payment{
			InvoiceID:       inv.ID,
			Method:          req.Method,
			Amount:          req.Amount,
			PaymentDate:     paymentDate,
			ReferenceNumber: reference,
			Status:          entity.PaymentStatusCompleted,
			Notes:           req.Notes,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
		Invoice:           updated,
		IsFullyPaid:       isFullyPaid,
		IsOverpayment:     isOverpayment,
		OverpaymentAmount: overpayment,
	}, nil
}
