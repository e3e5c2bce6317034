package billing_test

import (
	"errors"
	"testing"

	"github.com/jhoicas/Billing-api/internal/domain"
	"github.com/jhoicas/Billing-api/internal/domain/billing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func rate(s string) decimal.NullDecimal { return decimal.NewNullDecimal(d(s)) }

// ──────────────────────────────────────────────────────────────────────────────
// Escenario A: 1 x 500 + 2 x 25.50 con tasa por defecto 7%
//
//	subtotal = 551.00, impuesto = 38.57, total = 589.57
// ──────────────────────────────────────────────────────────────────────────────

func TestComputeTotals_EscenarioA(t *testing.T) {
	items := []billing.LineItemInput{
		{Description: "Consultoría", Quantity: d("1"), UnitPrice: d("500")},
		{Description: "Licencias", Quantity: d("2"), UnitPrice: d("25.50")},
	}

	totals, err := billing.ComputeTotals(items, billing.DefaultTaxRate)
	require.NoError(t, err)

	assert.Equal(t, "551.00", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "38.57", totals.TotalTax.StringFixed(2))
	assert.Equal(t, "589.57", totals.TotalAmount.StringFixed(2))
}

func TestComputeTotals_TasaPorLineaSobrescribeLaPorDefecto(t *testing.T) {
	items := []billing.LineItemInput{
		{Quantity: d("1"), UnitPrice: d("100"), TaxRate: rate("0")},
		{Quantity: d("1"), UnitPrice: d("100"), TaxRate: rate("0.19")},
		{Quantity: d("1"), UnitPrice: d("100")},
	}

	totals, err := billing.ComputeTotals(items, billing.DefaultTaxRate)
	require.NoError(t, err)

	assert.Equal(t, "300.00", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "26.00", totals.TotalTax.StringFixed(2))
	assert.Equal(t, "326.00", totals.TotalAmount.StringFixed(2))
}

// Las sumas se acumulan sin redondear: 3 x 0.333 x 7% redondeado por línea daría 0.06,
// acumulado exacto da 0.06993 -> 0.07.
func TestComputeTotals_RedondeaAlFinalNoPorLinea(t *testing.T) {
	items := []billing.LineItemInput{
		{Quantity: d("1"), UnitPrice: d("0.333")},
		{Quantity: d("1"), UnitPrice: d("0.333")},
		{Quantity: d("1"), UnitPrice: d("0.333")},
	}

	totals, err := billing.ComputeTotals(items, billing.DefaultTaxRate)
	require.NoError(t, err)

	assert.Equal(t, "1.00", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "0.07", totals.TotalTax.StringFixed(2))
	assert.Equal(t, "1.07", totals.TotalAmount.StringFixed(2))
}

func TestComputeTotals_RedondeoMitadHaciaArriba(t *testing.T) {
	// 1 x 0.05 al 10% = 0.005 -> 0.01
	items := []billing.LineItemInput{{Quantity: d("1"), UnitPrice: d("0.05"), TaxRate: rate("0.1")}}

	totals, err := billing.ComputeTotals(items, billing.DefaultTaxRate)
	require.NoError(t, err)

	assert.Equal(t, "0.01", totals.TotalTax.StringFixed(2))
	assert.Equal(t, "0.06", totals.TotalAmount.StringFixed(2))
}

func TestComputeTotals_PrecioCeroEsValido(t *testing.T) {
	items := []billing.LineItemInput{{Quantity: d("3"), UnitPrice: d("0")}}

	totals, err := billing.ComputeTotals(items, billing.DefaultTaxRate)
	require.NoError(t, err)
	assert.True(t, totals.TotalAmount.IsZero())
}

// ── Errores de validación ────────────────────────────────────────────────────

func TestComputeTotals_SinLineas(t *testing.T) {
	_, err := billing.ComputeTotals(nil, billing.DefaultTaxRate)

	require.Error(t, err)
	assert.ErrorIs(t, err, billing.ErrNoItems)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestComputeTotals_TasaPorDefectoFueraDeRango(t *testing.T) {
	items := []billing.LineItemInput{{Quantity: d("1"), UnitPrice: d("10")}}

	for _, r := range []string{"-0.01", "1.0001", "7"} {
		_, err := billing.ComputeTotals(items, d(r))
		assert.ErrorIs(t, err, billing.ErrTaxRateOutOfRange, "tasa %s", r)
	}

	_, err := billing.ComputeTotals(items, d("1"))
	assert.NoError(t, err, "tasa 1 es el límite superior válido")
}

func TestComputeTotals_CantidadNoPositivaEnCualquierLinea(t *testing.T) {
	items := []billing.LineItemInput{
		{Quantity: d("1"), UnitPrice: d("10")},
		{Quantity: d("0"), UnitPrice: d("10")},
	}

	_, err := billing.ComputeTotals(items, billing.DefaultTaxRate)

	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "items[1].quantity", vErr.Field)
}

func TestComputeTotals_PrecioNegativo(t *testing.T) {
	items := []billing.LineItemInput{{Quantity: d("1"), UnitPrice: d("-0.01")}}

	_, err := billing.ComputeTotals(items, billing.DefaultTaxRate)

	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "items[0].unit_price", vErr.Field)
}

func TestComputeLine_ImportesRedondeadosPorLinea(t *testing.T) {
	fig := billing.ComputeLine(billing.LineItemInput{Quantity: d("2"), UnitPrice: d("25.50")}, billing.DefaultTaxRate)

	assert.Equal(t, "51.00", fig.LineTotal.StringFixed(2))
	assert.Equal(t, "0.07", fig.TaxRate.String())
	assert.Equal(t, "3.57", fig.TaxAmount.StringFixed(2))
}

func TestExceedsPrecision(t *testing.T) {
	assert.False(t, billing.ExceedsPrecision(d("10.10"), 2))
	assert.False(t, billing.ExceedsPrecision(d("10.100"), 2))
	assert.True(t, billing.ExceedsPrecision(d("10.001"), 2))
}
