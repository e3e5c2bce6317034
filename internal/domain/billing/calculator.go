package billing

import (
	"fmt"

	"github.com/jhoicas/Billing-api/internal/domain"
	"github.com/shopspring/decimal"
)

// LineItemInput línea de factura antes de persistir.
// TaxRate sin valor (Valid=false) usa la tasa por defecto.
type LineItemInput struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	TaxRate     decimal.NullDecimal
}

// LineFigures importes de una línea, ya redondeados a centavos.
type LineFigures struct {
	LineTotal decimal.Decimal
	TaxRate   decimal.Decimal
	TaxAmount decimal.Decimal
}

// Totals totales de cabecera de una factura.
type Totals struct {
	Subtotal    decimal.Decimal
	TotalTax    decimal.Decimal
	TotalAmount decimal.Decimal
}

// EffectiveTaxRate tasa de la línea o, si no tiene, la tasa por defecto.
func (it LineItemInput) EffectiveTaxRate(defaultTaxRate decimal.Decimal) decimal.Decimal {
	if it.TaxRate.Valid {
		return it.TaxRate.Decimal
	}
	return defaultTaxRate
}

// ComputeLine calcula los importes guardados en la línea:
// LineTotal = round2(qty * price), TaxAmount = round2(LineTotal * rate).
func ComputeLine(item LineItemInput, defaultTaxRate decimal.Decimal) LineFigures {
	rate := item.EffectiveTaxRate(defaultTaxRate)
	lineTotal := Round2(item.Quantity.Mul(item.UnitPrice))
	return LineFigures{
		LineTotal: lineTotal,
		TaxRate:   rate,
		TaxAmount: Round2(lineTotal.Mul(rate)),
	}
}

// ComputeTotals calcula subtotal, impuesto y total de la factura.
// Las sumas se acumulan sin redondear; subtotal e impuesto se redondean al final
// y el total es round2(subtotal + impuesto) ya redondeados.
func ComputeTotals(items []LineItemInput, defaultTaxRate decimal.Decimal) (Totals, error) {
	if len(items) == 0 {
		return Totals{}, ErrNoItems
	}
	if !ValidTaxRate(defaultTaxRate) {
		return Totals{}, ErrTaxRateOutOfRange
	}
	for i, it := range items {
		if !it.Quantity.IsPositive() {
			return Totals{}, domain.NewValidationError(fmt.Sprintf("items[%d].quantity", i), "la cantidad debe ser mayor que cero")
		}
		if it.UnitPrice.IsNegative() {
			return Totals{}, domain.NewValidationError(fmt.Sprintf("items[%d].unit_price", i), "el precio unitario no puede ser negativo")
		}
	}

	subtotal := decimal.Zero
	totalTax := decimal.Zero
	for _, it := range items {
		lineTotal := it.Quantity.Mul(it.UnitPrice)
		subtotal = subtotal.Add(lineTotal)
		totalTax = totalTax.Add(lineTotal.Mul(it.EffectiveTaxRate(defaultTaxRate)))
	}

	subtotal = Round2(subtotal)
	totalTax = Round2(totalTax)
	return Totals{
		Subtotal:    subtotal,
		TotalTax:    totalTax,
		TotalAmount: Round2(subtotal.Add(totalTax)),
	}, nil
}
