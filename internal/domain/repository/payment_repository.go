package repository

import (
	"context"

	"github.com/jhoicas/Billing-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// PaymentFilter criterios de listado de pagos.
type PaymentFilter struct {
	Status entity.PaymentStatus
	Method entity.PaymentMethod
	Limit  int
	Offset int
}

// PaymentStats agregados de pagos (opcionalmente de una factura).
type PaymentStats struct {
	Total       int64
	TotalAmount decimal.Decimal
	Completed   int64
	Pending     int64
	Failed      int64
}

// PaymentRepository define el puerto de persistencia para Payment.
type PaymentRepository interface {
	// Create guarda el pago. Referencia repetida: domain.ErrDuplicate.
	Create(ctx context.Context, payment *entity.Payment) error
	GetByID(ctx context.Context, id string) (*entity.Payment, error)
	GetByReference(ctx context.Context, reference string) (*entity.Payment, error)
	ListByInvoice(ctx context.Context, invoiceID string) ([]*entity.Payment, error)
	List(ctx context.Context, filter PaymentFilter) ([]*entity.Payment, error)
	// ListWithoutReceipt pagos completados que no tienen recibo (conciliación).
	ListWithoutReceipt(ctx context.Context, limit int) ([]*entity.Payment, error)
	Statistics(ctx context.Context, invoiceID string) (*PaymentStats, error)
}
