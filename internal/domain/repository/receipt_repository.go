package repository

import (
	"context"

	"github.com/jhoicas/Billing-api/internal/domain/entity"
)

// ReceiptRepository define el puerto de persistencia para Receipt y sus líneas.
type ReceiptRepository interface {
	// Create guarda cabecera y líneas. Número o pago repetido: domain.ErrDuplicate.
	Create(ctx context.Context, receipt *entity.Receipt) error
	GetByID(ctx context.Context, id string) (*entity.Receipt, error)
	GetByPaymentID(ctx context.Context, paymentID string) (*entity.Receipt, error)
	GetByNumber(ctx context.Context, number string) (*entity.Receipt, error)
	ListByInvoice(ctx context.Context, invoiceID string) ([]*entity.Receipt, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Receipt, error)
}
