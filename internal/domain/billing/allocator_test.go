package billing_test

import (
	"testing"

	"github.com/jhoicas/Billing-api/internal/domain/billing"
	"github.com/jhoicas/Billing-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// invoiceEscenarioA factura del escenario A con líneas ya calculadas.
func invoiceEscenarioA(t *testing.T) entity.Invoice {
	t.Helper()
	inputs := []billing.LineItemInput{
		{Description: "Consultoría", Quantity: d("1"), UnitPrice: d("500")},
		{Description: "Licencias", Quantity: d("2"), UnitPrice: d("25.50")},
	}
	totals, err := billing.ComputeTotals(inputs, billing.DefaultTaxRate)
	require.NoError(t, err)

	inv := pendingInvoice(totals.TotalAmount.String())
	inv.Subtotal = totals.Subtotal
	inv.TotalTax = totals.TotalTax
	for i, in := range inputs {
		fig := billing.ComputeLine(in, billing.DefaultTaxRate)
		inv.Items = append(inv.Items, entity.InvoiceLineItem{
			ID:          []string{"it-1", "it-2"}[i],
			InvoiceID:   inv.ID,
			Description: in.Description,
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
			LineTotal:   fig.LineTotal,
			TaxRate:     fig.TaxRate,
			TaxAmount:   fig.TaxAmount,
		})
	}
	return inv
}

func TestAllocate_RepartoProporcionalPorLinea(t *testing.T) {
	inv := invoiceEscenarioA(t)
	app, err := newEngine().Apply(inv, cashPayment("300.00"))
	require.NoError(t, err)
	app.Payment.ID = "pay-1"

	receipt := billing.NewAllocator(&seqRefs{}, clock).Allocate(app.Payment, app.Invoice, "")

	require.Len(t, receipt.Items, 2)
	// 300 * 535.00 / 589.57 = 272.23 ; 300 * 54.57 / 589.57 = 27.77
	assert.Equal(t, "272.23", receipt.Items[0].PaidAmount.StringFixed(2))
	assert.Equal(t, "27.77", receipt.Items[1].PaidAmount.StringFixed(2))

	assert.Equal(t, "it-1", receipt.Items[0].InvoiceItemID)
	assert.Equal(t, "Licencias", receipt.Items[1].Description)
	assert.Equal(t, "51.00", receipt.Items[1].LineTotal.StringFixed(2))
	assert.Equal(t, "3.57", receipt.Items[1].TaxAmount.StringFixed(2))
}

func TestAllocate_CabeceraDelRecibo(t *testing.T) {
	inv := invoiceEscenarioA(t)
	app, err := newEngine().Apply(inv, billing.PaymentRequest{
		Amount: d("300.00"),
		Method: entity.PaymentMethodDebitCard,
		Notes:  "abono",
	})
	require.NoError(t, err)
	app.Payment.ID = "pay-1"

	receipt := billing.NewAllocator(&seqRefs{}, clock).Allocate(app.Payment, app.Invoice, "")

	assert.Equal(t, "RCP-TEST-0001", receipt.Number)
	assert.Equal(t, "pay-1", receipt.PaymentID)
	assert.Equal(t, "inv-1", receipt.InvoiceID)
	assert.Equal(t, app.Payment.PaymentDate, receipt.ReceiptDate)
	assert.Equal(t, "300.00", receipt.TotalPaid.StringFixed(2))
	assert.Equal(t, "289.57", receipt.RemainingBalance.StringFixed(2))
	assert.Equal(t, entity.PaymentMethodDebitCard, receipt.PaymentMethod)
	assert.Equal(t, "abono", receipt.Notes)
}

func TestAllocate_NumeroSuministrado(t *testing.T) {
	inv := invoiceEscenarioA(t)
	app, err := newEngine().Apply(inv, cashPayment("10.00"))
	require.NoError(t, err)

	receipt := billing.NewAllocator(&seqRefs{}, clock).Allocate(app.Payment, app.Invoice, "RCP-MANUAL")
	assert.Equal(t, "RCP-MANUAL", receipt.Number)
}

// En un sobrepago el saldo del recibo es el ya acotado (0), no el negativo.
func TestAllocate_SobrepagoSaldoAcotado(t *testing.T) {
	inv := invoiceEscenarioA(t)
	app, err := newEngine().Apply(inv, cashPayment("700.00"))
	require.NoError(t, err)

	receipt := billing.NewAllocator(&seqRefs{}, clock).Allocate(app.Payment, app.Invoice, "")

	assert.True(t, receipt.RemainingBalance.IsZero())
	assert.Equal(t, "700.00", receipt.TotalPaid.StringFixed(2))
}

// Cada recibo reparte su pago sobre el 100% de las líneas, aunque haya pagos previos.
func TestAllocate_CadaReciboReparteSobreTodasLasLineas(t *testing.T) {
	engine := newEngine()
	allocator := billing.NewAllocator(&seqRefs{}, clock)
	inv := invoiceEscenarioA(t)

	first, err := engine.Apply(inv, cashPayment("100.00"))
	require.NoError(t, err)
	second, err := engine.Apply(first.Invoice, cashPayment("100.00"))
	require.NoError(t, err)

	r1 := allocator.Allocate(first.Payment, first.Invoice, "")
	r2 := allocator.Allocate(second.Payment, second.Invoice, "")

	for i := range r1.Items {
		assert.True(t, r1.Items[i].PaidAmount.Equal(r2.Items[i].PaidAmount), "línea %d", i)
	}
}

// La suma repartida difiere del pago como mucho un centavo por línea.
func TestAllocate_SumaDentroDeUnCentavoPorLinea(t *testing.T) {
	inv := invoiceEscenarioA(t)
	tolerance := decimal.NewFromFloat(0.01).Mul(decimal.NewFromInt(int64(len(inv.Items))))

	for _, amount := range []string{"0.01", "1.00", "33.33", "100.00", "289.57", "589.57", "1000.00"} {
		app, err := newEngine().Apply(inv, cashPayment(amount))
		require.NoError(t, err)

		receipt := billing.NewAllocator(&seqRefs{}, clock).Allocate(app.Payment, app.Invoice, "")
		sum := decimal.Zero
		for _, it := range receipt.Items {
			sum = sum.Add(it.PaidAmount)
		}
		diff := sum.Sub(d(amount)).Abs()
		assert.True(t, diff.LessThanOrEqual(tolerance), "monto %s: suma %s", amount, sum)
	}
}

func TestAllocate_FacturaSinTotalRepartoCero(t *testing.T) {
	inv := entity.Invoice{
		ID:    "inv-0",
		Items: []entity.InvoiceLineItem{{ID: "it-1"}},
	}
	payment := entity.Payment{ID: "pay-0", Amount: d("5.00")}

	receipt := billing.NewAllocator(&seqRefs{}, clock).Allocate(payment, inv, "")

	require.Len(t, receipt.Items, 1)
	assert.True(t, receipt.Items[0].PaidAmount.IsZero())
}
