package billing

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// Prefijos de numeración.
const (
	PrefixInvoice = "INV"
	PrefixPayment = "PAY"
	PrefixReceipt = "RCP"
)

// ReferenceGenerator genera números legibles para facturas, pagos y recibos.
// La unicidad la garantiza la base de datos; el llamador reintenta ante ErrDuplicate.
type ReferenceGenerator interface {
	Generate(prefix string, now time.Time) string
}

// RandomReferenceGenerator formato por defecto:
// INV-YYYYMMDD-NNNN para facturas y {PREFIJO}-{epochMillis}-NNNN para el resto.
type RandomReferenceGenerator struct{}

// NewRandomReferenceGenerator crea el generador por defecto.
func NewRandomReferenceGenerator() *RandomReferenceGenerator {
	return &RandomReferenceGenerator{}
}

// Generate implementa ReferenceGenerator.
func (RandomReferenceGenerator) Generate(prefix string, now time.Time) string {
	suffix := rand.IntN(10000)
	if prefix == PrefixInvoice {
		return fmt.Sprintf("%s-%s-%04d", prefix, now.Format("20060102"), suffix)
	}
	return fmt.Sprintf("%s-%d-%04d", prefix, now.UnixMilli(), suffix)
}
