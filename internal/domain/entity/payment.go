package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod medio de pago.
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCreditCard   PaymentMethod = "credit_card"
	PaymentMethodDebitCard    PaymentMethod = "debit_card"
	PaymentMethodEWallet      PaymentMethod = "e_wallet"
)

// PaymentMethods medios aceptados.
var PaymentMethods = []PaymentMethod{
	PaymentMethodCash,
	PaymentMethodBankTransfer,
	PaymentMethodCreditCard,
	PaymentMethodDebitCard,
	PaymentMethodEWallet,
}

// Valid indica si el medio de pago es conocido.
func (m PaymentMethod) Valid() bool {
	for _, pm := range PaymentMethods {
		if m == pm {
			return true
		}
	}
	return false
}

// PaymentStatus estado de un pago. El motor solo produce completed.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Valid indica si el estado es conocido.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed,
		PaymentStatusCancelled, PaymentStatusRefunded:
		return true
	}
	return false
}

// Payment pago aplicado a una factura. Inmutable una vez creado.
type Payment struct {
	ID              string
	InvoiceID       string
	Method          PaymentMethod
	Amount          decimal.Decimal
	PaymentDate     time.Time
	ReferenceNumber string // único
	Status          PaymentStatus
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
