// Package billing: núcleo de cobros. Cálculo de totales de factura, aplicación de pagos
// sobre el saldo y reparto de cada pago entre las líneas de la factura (recibo).
// Funciones puras: sin I/O, sin reloj global; el reloj y los números se inyectan.
package billing

import "github.com/shopspring/decimal"

var (
	// DefaultTaxRate tasa aplicada a las líneas sin tasa propia (7%).
	DefaultTaxRate = decimal.RequireFromString("0.07")
	// MaxPaymentAmount monto máximo admitido por pago.
	MaxPaymentAmount = decimal.RequireFromString("999999999.99")
)

// Round2 redondea a centavos, mitad hacia arriba (lejos de cero).
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ExceedsPrecision indica si d tiene más de places decimales significativos.
func ExceedsPrecision(d decimal.Decimal, places int32) bool {
	return !d.Equal(d.Truncate(places))
}

// ValidTaxRate indica si la tasa está en [0, 1].
func ValidTaxRate(rate decimal.Decimal) bool {
	return !rate.IsNegative() && rate.LessThanOrEqual(decimal.NewFromInt(1))
}
