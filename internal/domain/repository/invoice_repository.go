package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Billing-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// InvoiceFilter criterios de listado de facturas.
type InvoiceFilter struct {
	Status     entity.InvoiceStatus
	CustomerID string
	Limit      int
	Offset     int
}

// InvoiceStats agregados de facturación.
type InvoiceStats struct {
	Total            int64
	Draft            int64
	Pending          int64
	PartiallyPaid    int64
	Paid             int64
	Cancelled        int64
	Overdue          int64
	TotalAmount      decimal.Decimal
	TotalOutstanding decimal.Decimal
}

// InvoiceRepository define el puerto de persistencia para Invoice y sus líneas.
// Los Get* devuelven (nil, nil) cuando no existe el registro.
type InvoiceRepository interface {
	// Create guarda cabecera y líneas. Número repetido: domain.ErrDuplicate.
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	// GetByIDForUpdate bloquea la fila hasta el fin de la transacción.
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Invoice, error)
	GetByNumber(ctx context.Context, number string) (*entity.Invoice, error)
	List(ctx context.Context, filter InvoiceFilter) ([]*entity.Invoice, error)
	// Update actualiza los campos editables de cabecera (vencimiento, cliente, notas). No toca el estado.
	Update(ctx context.Context, invoice *entity.Invoice) error
	// UpdateStatus fija el estado a mano sin tocar el saldo.
	UpdateStatus(ctx context.Context, id string, status entity.InvoiceStatus, updatedAt time.Time) error
	// UpdateBalance actualiza saldo y estado tras aplicar un pago.
	UpdateBalance(ctx context.Context, id string, outstanding decimal.Decimal, status entity.InvoiceStatus, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
	// MarkOverdue pasa a overdue las facturas con saldo y vencimiento anterior a now.
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
	Statistics(ctx context.Context) (*InvoiceStats, error)
}
