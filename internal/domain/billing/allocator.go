package billing

import (
	"time"

	"github.com/jhoicas/Billing-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Allocator reparte un pago entre las líneas de la factura para emitir el recibo.
type Allocator struct {
	refs ReferenceGenerator
	now  func() time.Time
}

// NewAllocator crea el repartidor. refs y now nil usan los valores por defecto.
func NewAllocator(refs ReferenceGenerator, now func() time.Time) *Allocator {
	if refs == nil {
		refs = NewRandomReferenceGenerator()
	}
	if now == nil {
		now = time.Now
	}
	return &Allocator{refs: refs, now: now}
}

// Allocate arma el recibo del pago sobre la factura ya actualizada.
// Cada línea recibe round2(monto * (LineTotal + TaxAmount) / TotalAmount); el reparto
// cubre siempre el 100% de las líneas. RemainingBalance es el saldo ya acotado a cero.
// receiptNumber vacío: se genera RCP-{epochMillis}-NNNN.
func (a *Allocator) Allocate(payment entity.Payment, updated entity.Invoice, receiptNumber string) entity.Receipt {
	now := a.now()
	if receiptNumber == "" {
		receiptNumber = a.refs.Generate(PrefixReceipt, now)
	}

	items := make([]entity.ReceiptLineItem, 0, len(updated.Items))
	for _, it := range updated.Items {
		items = append(items, entity.ReceiptLineItem{
			InvoiceItemID: it.ID,
			Description:   it.Description,
			Quantity:      it.Quantity,
			UnitPrice:     it.UnitPrice,
			LineTotal:     it.LineTotal,
			TaxAmount:     it.TaxAmount,
			PaidAmount:    proportionalShare(payment.Amount, it.LineTotal.Add(it.TaxAmount), updated.TotalAmount),
			CreatedAt:     now,
		})
	}

	return entity.Receipt{
		PaymentID:        payment.ID,
		InvoiceID:        updated.ID,
		Number:           receiptNumber,
		ReceiptDate:      payment.PaymentDate,
		TotalPaid:        payment.Amount,
		RemainingBalance: updated.OutstandingAmount,
		Items:            items,
		PaymentMethod:    payment.Method,
		Notes:            payment.Notes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// proportionalShare round2(amount * part / total); total cero reparte cero.
func proportionalShare(amount, part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return Round2(amount.Mul(part).Div(total))
}
