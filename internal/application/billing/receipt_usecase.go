package billing

import (
	"context"

	"github.com/jhoicas/Billing-api/internal/application/dto"
	"github.com/jhoicas/Billing-api/internal/domain"
	"github.com/jhoicas/Billing-api/internal/domain/billing"
	"github.com/jhoicas/Billing-api/internal/domain/entity"
	"github.com/jhoicas/Billing-api/internal/domain/repository"
	"github.com/jhoicas/Billing-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// ReceiptUseCase consulta de recibos y conciliación de pagos sin recibo.
type ReceiptUseCase struct {
	txRunner    BillingTxRunner
	receiptRepo repository.ReceiptRepository
	paymentRepo repository.PaymentRepository
	invoiceRepo repository.InvoiceRepository
	allocator   *billing.Allocator
	log         *logger.Logger
}

// NewReceiptUseCase construye el caso de uso.
func NewReceiptUseCase(
	txRunner BillingTxRunner,
	receiptRepo repository.ReceiptRepository,
	paymentRepo repository.PaymentRepository,
	invoiceRepo repository.InvoiceRepository,
	allocator *billing.Allocator,
	log *logger.Logger,
) *ReceiptUseCase {
	return &ReceiptUseCase{
		txRunner:    txRunner,
		receiptRepo: receiptRepo,
		paymentRepo: paymentRepo,
		invoiceRepo: invoiceRepo,
		allocator:   allocator,
		log:         log.Component("receipts"),
	}
}

// GetReceipt obtiene un recibo por ID.
func (uc *ReceiptUseCase) GetReceipt(ctx context.Context, id string) (*dto.ReceiptResponse, error) {
	r, err := uc.receiptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.ErrNotFound
	}
	return toReceiptResponse(r), nil
}

// GetReceiptByPayment obtiene el recibo de un pago.
func (uc *ReceiptUseCase) GetReceiptByPayment(ctx context.Context, paymentID string) (*dto.ReceiptResponse, error) {
	r, err := uc.receiptRepo.GetByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.ErrNotFound
	}
	return toReceiptResponse(r), nil
}

// GetReceiptByNumber obtiene un recibo por su número.
func (uc *ReceiptUseCase) GetReceiptByNumber(ctx context.Context, number string) (*dto.ReceiptResponse, error) {
	r, err := uc.receiptRepo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.ErrNotFound
	}
	return toReceiptResponse(r), nil
}

// ListReceiptsByInvoice recibos de una factura, más recientes primero.
func (uc *ReceiptUseCase) ListReceiptsByInvoice(ctx context.Context, invoiceID string) (*dto.ListResponse[dto.ReceiptResponse], error) {
	list, err := uc.receiptRepo.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return toReceiptList(list, len(list), 0), nil
}

// ListReceipts lista recibos paginados.
func (uc *ReceiptUseCase) ListReceipts(ctx context.Context, page dto.PageRequest) (*dto.ListResponse[dto.ReceiptResponse], error) {
	limit, offset := normalizePage(page.Limit, page.Offset)
	list, err := uc.receiptRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return toReceiptList(list, limit, offset), nil
}

// ReissueMissingReceipts emite el recibo de los pagos confirmados que quedaron sin él.
// El saldo del recibo es el de la factura justo después de ese pago, aunque luego
// se hayan aplicado otros.
func (uc *ReceiptUseCase) ReissueMissingReceipts(ctx context.Context, limit int) (*dto.ReconcileResponse, error) {
	limit, _ = normalizePage(limit, 0)
	payments, err := uc.paymentRepo.ListWithoutReceipt(ctx, limit)
	if err != nil {
		return nil, err
	}

	res := &dto.ReconcileResponse{Scanned: len(payments)}
	for _, p := range payments {
		inv, err := uc.invoiceRepo.GetByID(ctx, p.InvoiceID)
		if err != nil || inv == nil {
			uc.log.Warn().Err(err).Str("reference", p.ReferenceNumber).Msg("conciliación: factura del pago no disponible")
			res.Failed = append(res.Failed, p.ReferenceNumber)
			continue
		}
		history, err := uc.paymentRepo.ListByInvoice(ctx, p.InvoiceID)
		if err != nil {
			uc.log.Warn().Err(err).Str("reference", p.ReferenceNumber).Msg("conciliación: pagos de la factura no disponibles")
			res.Failed = append(res.Failed, p.ReferenceNumber)
			continue
		}
		snapshot := *inv
		snapshot.OutstandingAmount = balanceAfter(inv.TotalAmount, history, p.ID)
		receipt, err := issueReceipt(ctx, uc.txRunner, uc.allocator, *p, snapshot)
		if err != nil {
			uc.log.Error().Err(err).Str("reference", p.ReferenceNumber).Msg("conciliación: no se pudo emitir el recibo")
			res.Failed = append(res.Failed, p.ReferenceNumber)
			continue
		}
		uc.log.Info().Str("reference", p.ReferenceNumber).Str("receipt", receipt.Number).Msg("conciliación: recibo emitido")
		res.Reissued++
	}
	return res, nil
}

// balanceAfter saldo de la factura tras el pago paymentID: total menos los pagos
// completados hasta ese inclusive. history viene más reciente primero.
func balanceAfter(total decimal.Decimal, history []*entity.Payment, paymentID string) decimal.Decimal {
	paid := decimal.Zero
	for i := len(history) - 1; i >= 0; i-- {
		p := history[i]
		if p.Status == entity.PaymentStatusCompleted {
			paid = paid.Add(p.Amount)
		}
		if p.ID == paymentID {
			break
		}
	}
	return decimal.Max(decimal.Zero, billing.Round2(total.Sub(paid)))
}
