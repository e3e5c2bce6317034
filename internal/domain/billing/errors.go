package billing

import "github.com/jhoicas/Billing-api/internal/domain"

// Precondiciones de un pago. Comparables con errors.Is; todas envuelven domain.ErrInvalidInput.
var (
	ErrAmountNotPositive    = domain.NewValidationError("amount", "el monto del pago debe ser mayor que cero")
	ErrAmountExceedsMaximum = domain.NewValidationError("amount", "el monto del pago excede el máximo permitido (999999999.99)")
	ErrAmountPrecision      = domain.NewValidationError("amount", "el monto del pago admite como máximo 2 decimales")
	ErrInvalidPaymentMethod = domain.NewValidationError("payment_method", "medio de pago no soportado")
	ErrInvoiceAlreadyPaid   = domain.NewValidationError("invoice", "la factura ya está totalmente pagada")
	ErrInvoiceCancelled     = domain.NewValidationError("invoice", "no se pueden registrar pagos sobre una factura anulada")
)

// Validaciones del cálculo de totales.
var (
	ErrNoItems           = domain.NewValidationError("items", "la factura debe tener al menos una línea")
	ErrTaxRateOutOfRange = domain.NewValidationError("tax_rate", "la tasa de impuesto debe estar entre 0 y 1")
)
