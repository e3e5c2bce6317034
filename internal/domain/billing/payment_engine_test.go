package billing_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/jhoicas/Billing-api/internal/domain"
	"github.com/jhoicas/Billing-api/internal/domain/billing"
	"github.com/jhoicas/Billing-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

// seqRefs generador determinista: {PREFIJO}-TEST-0001, 0002, ...
type seqRefs struct{ n int }

func (g *seqRefs) Generate(prefix string, _ time.Time) string {
	g.n++
	return fmt.Sprintf("%s-TEST-%04d", prefix, g.n)
}

func clock() time.Time { return fixedNow }

func newEngine() *billing.PaymentEngine {
	return billing.NewPaymentEngine(&seqRefs{}, clock)
}

func pendingInvoice(total string) entity.Invoice {
	return entity.Invoice{
		ID:                "inv-1",
		Number:            "INV-20240315-0001",
		TotalAmount:       d(total),
		OutstandingAmount: d(total),
		Status:            entity.InvoiceStatusPending,
	}
}

func cashPayment(amount string) billing.PaymentRequest {
	return billing.PaymentRequest{Amount: d(amount), Method: entity.PaymentMethodCash}
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenario B: total 589.57; pago 300.00 y luego 750.00
// ──────────────────────────────────────────────────────────────────────────────

func TestApply_EscenarioB_ParcialYLuegoSobrepago(t *testing.T) {
	engine := newEngine()
	inv := pendingInvoice("589.57")

	first, err := engine.Apply(inv, cashPayment("300.00"))
	require.NoError(t, err)
	assert.Equal(t, "289.57", first.Invoice.OutstandingAmount.StringFixed(2))
	assert.Equal(t, entity.InvoiceStatusPartiallyPaid, first.Invoice.Status)
	assert.False(t, first.IsFullyPaid)
	assert.False(t, first.IsOverpayment)
	assert.True(t, first.OverpaymentAmount.IsZero())

	second, err := engine.Apply(first.Invoice, cashPayment("750.00"))
	require.NoError(t, err)
	assert.True(t, second.Invoice.OutstandingAmount.IsZero())
	assert.Equal(t, entity.InvoiceStatusPaid, second.Invoice.Status)
	assert.True(t, second.IsFullyPaid)
	assert.True(t, second.IsOverpayment)
	assert.Equal(t, "460.43", second.OverpaymentAmount.StringFixed(2))
}

// Escenario C: total 750.00 sin pagos previos; un pago de 1000.00.
func TestApply_EscenarioC_SobrepagoEnUnSoloPago(t *testing.T) {
	app, err := newEngine().Apply(pendingInvoice("750.00"), cashPayment("1000.00"))
	require.NoError(t, err)

	assert.True(t, app.IsOverpayment)
	assert.Equal(t, "250.00", app.OverpaymentAmount.StringFixed(2))
	assert.True(t, app.Invoice.OutstandingAmount.IsZero(), "el saldo se acota a cero")
	assert.Equal(t, entity.InvoiceStatusPaid, app.Invoice.Status)
}

func TestApply_PagoExactoNoEsSobrepago(t *testing.T) {
	app, err := newEngine().Apply(pendingInvoice("100.00"), cashPayment("100.00"))
	require.NoError(t, err)

	assert.True(t, app.IsFullyPaid)
	assert.False(t, app.IsOverpayment)
	assert.True(t, app.OverpaymentAmount.IsZero())
}

func TestApply_NoModificaLaFacturaOriginal(t *testing.T) {
	inv := pendingInvoice("100.00")
	inv.Items = []entity.InvoiceLineItem{{ID: "it-1", LineTotal: d("93.46"), TaxAmount: d("6.54")}}

	app, err := newEngine().Apply(inv, cashPayment("40.00"))
	require.NoError(t, err)

	assert.Equal(t, "100.00", inv.OutstandingAmount.StringFixed(2))
	assert.Equal(t, entity.InvoiceStatusPending, inv.Status)
	assert.Equal(t, "60.00", app.Invoice.OutstandingAmount.StringFixed(2))
	assert.Len(t, app.Invoice.Items, 1)
}

func TestApply_ConstruyePagoCompletado(t *testing.T) {
	app, err := newEngine().Apply(pendingInvoice("100.00"), billing.PaymentRequest{
		Amount: d("10.00"),
		Method: entity.PaymentMethodBankTransfer,
		Notes:  "transferencia",
	})
	require.NoError(t, err)

	p := app.Payment
	assert.Equal(t, "inv-1", p.InvoiceID)
	assert.Equal(t, "PAY-TEST-0001", p.ReferenceNumber)
	assert.Equal(t, entity.PaymentStatusCompleted, p.Status)
	assert.Equal(t, fixedNow, p.PaymentDate, "sin fecha usa el reloj inyectado")
	assert.Equal(t, "transferencia", p.Notes)
	assert.Empty(t, p.ID, "el ID lo asigna la persistencia")
}

func TestApply_RespetaReferenciaYFechaDelLlamador(t *testing.T) {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	app, err := newEngine().Apply(pendingInvoice("100.00"), billing.PaymentRequest{
		Amount:          d("10.00"),
		Method:          entity.PaymentMethodCreditCard,
		ReferenceNumber: "BANCO-123",
		PaymentDate:     &date,
	})
	require.NoError(t, err)

	assert.Equal(t, "BANCO-123", app.Payment.ReferenceNumber)
	assert.Equal(t, date, app.Payment.PaymentDate)
}

func TestApply_FacturaVencidaAdmitePagos(t *testing.T) {
	inv := pendingInvoice("100.00")
	inv.Status = entity.InvoiceStatusOverdue

	app, err := newEngine().Apply(inv, cashPayment("10.00"))
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusPartiallyPaid, app.Invoice.Status)
}

// ── Precondiciones ───────────────────────────────────────────────────────────

func TestApply_Precondiciones(t *testing.T) {
	paid := pendingInvoice("100.00")
	paid.OutstandingAmount = d("0")
	paid.Status = entity.InvoiceStatusPaid

	cancelled := pendingInvoice("100.00")
	cancelled.Status = entity.InvoiceStatusCancelled

	cases := []struct {
		name string
		inv  entity.Invoice
		req  billing.PaymentRequest
		want error
	}{
		{"monto cero", pendingInvoice("100.00"), cashPayment("0"), billing.ErrAmountNotPositive},
		{"monto negativo", pendingInvoice("100.00"), cashPayment("-5"), billing.ErrAmountNotPositive},
		{"monto sobre el máximo", pendingInvoice("100.00"), cashPayment("1000000000.00"), billing.ErrAmountExceedsMaximum},
		{"tres decimales", pendingInvoice("100.00"), cashPayment("10.001"), billing.ErrAmountPrecision},
		{"medio desconocido", pendingInvoice("100.00"), billing.PaymentRequest{Amount: d("1"), Method: "cheque"}, billing.ErrInvalidPaymentMethod},
		{"factura pagada", paid, cashPayment("10"), billing.ErrInvoiceAlreadyPaid},
		{"factura anulada", cancelled, cashPayment("10"), billing.ErrInvoiceCancelled},
		// el monto se valida antes que la factura
		{"monto cero sobre factura pagada", paid, cashPayment("0"), billing.ErrAmountNotPositive},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newEngine().Apply(tc.inv, tc.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestApply_MontoMaximoEsValido(t *testing.T) {
	inv := pendingInvoice("999999999.99")

	app, err := newEngine().Apply(inv, cashPayment("999999999.99"))
	require.NoError(t, err)
	assert.True(t, app.IsFullyPaid)
}
