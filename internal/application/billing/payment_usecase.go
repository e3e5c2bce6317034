package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jhoicas/Billing-api/internal/application/dto"
	"github.com/jhoicas/Billing-api/internal/domain"
	"github.com/jhoicas/Billing-api/internal/domain/billing"
	"github.com/jhoicas/Billing-api/internal/domain/entity"
	"github.com/jhoicas/Billing-api/internal/domain/repository"
	"github.com/jhoicas/Billing-api/pkg/logger"
)

// ReceiptPendingError el pago quedó confirmado pero su recibo no se pudo guardar.
// No se debe reintentar el pago: la conciliación reemite el recibo.
type ReceiptPendingError struct {
	PaymentID       string
	ReferenceNumber string
	Err             error
}

func (e *ReceiptPendingError) Error() string {
	return fmt.Sprintf("pago %s registrado sin recibo: %v", e.ReferenceNumber, e.Err)
}

func (e *ReceiptPendingError) Unwrap() []error {
	return []error{domain.ErrReceiptPending, e.Err}
}

// PaymentUseCase registro y consulta de pagos.
type PaymentUseCase struct {
	txRunner    BillingTxRunner
	paymentRepo repository.PaymentRepository
	engine      *billing.PaymentEngine
	allocator   *billing.Allocator
	log         *logger.Logger
}

// NewPaymentUseCase construye el caso de uso.
func NewPaymentUseCase(
	txRunner BillingTxRunner,
	paymentRepo repository.PaymentRepository,
	engine *billing.PaymentEngine,
	allocator *billing.Allocator,
	log *logger.Logger,
) *PaymentUseCase {
	return &PaymentUseCase{
		txRunner:    txRunner,
		paymentRepo: paymentRepo,
		engine:      engine,
		allocator:   allocator,
		log:         log.Component("payments"),
	}
}

// ProcessPayment aplica un pago sobre una factura y emite su recibo.
//
//  1. Transacción 1: bloquea la factura, aplica el pago, guarda el pago y el nuevo saldo.
//  2. Transacción 2: guarda el recibo con el reparto por línea.
//
// Si falla la segunda, el pago ya está confirmado: se retorna *ReceiptPendingError.
func (uc *PaymentUseCase) ProcessPayment(ctx context.Context, in dto.CreatePaymentRequest) (*dto.ProcessPaymentResponse, error) {
	invoiceID := strings.TrimSpace(in.InvoiceID)
	if invoiceID == "" {
		return nil, domain.NewValidationError("invoice_id", "la factura es obligatoria")
	}
	req := billing.PaymentRequest{
		Amount:          in.Amount,
		Method:          entity.PaymentMethod(in.PaymentMethod),
		ReferenceNumber: strings.TrimSpace(in.ReferenceNumber),
		PaymentDate:     in.PaymentDate,
		Notes:           in.Notes,
	}

	var app billing.PaymentApplication
	for attempt := 1; ; attempt++ {
		err := uc.txRunner.RunBilling(ctx, func(
			invoiceRepo repository.InvoiceRepository,
			paymentRepo repository.PaymentRepository,
			_ repository.ReceiptRepository,
		) error {
			inv, err := invoiceRepo.GetByIDForUpdate(ctx, invoiceID)
			if err != nil {
				return err
			}
			if inv == nil {
				return domain.ErrNotFound
			}
			app, err = uc.engine.Apply(*inv, req)
			if err != nil {
				return err
			}
			if err := paymentRepo.Create(ctx, &app.Payment); err != nil {
				return err
			}
			return invoiceRepo.UpdateBalance(ctx, inv.ID, app.Invoice.OutstandingAmount, app.Invoice.Status, app.Invoice.UpdatedAt)
		})
		if err == nil {
			break
		}
		if errors.Is(err, domain.ErrDuplicate) && req.ReferenceNumber == "" && attempt < maxNumberAttempts {
			continue
		}
		return nil, err
	}

	receipt, err := issueReceipt(ctx, uc.txRunner, uc.allocator, app.Payment, app.Invoice)
	if err != nil {
		uc.log.Error().Err(err).
			Str("payment_id", app.Payment.ID).
			Str("reference", app.Payment.ReferenceNumber).
			Str("invoice_id", app.Invoice.ID).
			Msg("pago confirmado sin recibo; queda pendiente de conciliación")
		return nil, &ReceiptPendingError{
			PaymentID:       app.Payment.ID,
			ReferenceNumber: app.Payment.ReferenceNumber,
			Err:             err,
		}
	}

	uc.log.Info().
		Str("reference", app.Payment.ReferenceNumber).
		Str("invoice", app.Invoice.Number).
		Str("amount", app.Payment.Amount.StringFixed(2)).
		Str("status", string(app.Invoice.Status)).
		Msg("pago aplicado")

	return &dto.ProcessPaymentResponse{
		Payment:           *toPaymentResponse(&app.Payment),
		Invoice:           *toInvoiceResponse(&app.Invoice),
		Receipt:           *toReceiptResponse(receipt),
		IsFullyPaid:       app.IsFullyPaid,
		IsOverpayment:     app.IsOverpayment,
		OverpaymentAmount: app.OverpaymentAmount,
		Message:           paymentMessage(app),
	}, nil
}

func paymentMessage(app billing.PaymentApplication) string {
	switch {
	case app.IsOverpayment:
		return fmt.Sprintf("Pago registrado. Se detectó un sobrepago de %s", app.OverpaymentAmount.StringFixed(2))
	case app.IsFullyPaid:
		return "Pago registrado. La factura quedó totalmente pagada"
	default:
		return fmt.Sprintf("Pago registrado. Saldo pendiente: %s", app.Invoice.OutstandingAmount.StringFixed(2))
	}
}

// issueReceipt reparte el pago y guarda el recibo en su propia transacción,
// regenerando el número si colisiona.
func issueReceipt(
	ctx context.Context,
	txRunner BillingTxRunner,
	allocator *billing.Allocator,
	payment entity.Payment,
	inv entity.Invoice,
) (*entity.Receipt, error) {
	var lastErr error
	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		receipt := allocator.Allocate(payment, inv, "")
		lastErr = txRunner.RunBilling(ctx, func(
			_ repository.InvoiceRepository,
			_ repository.PaymentRepository,
			receiptRepo repository.ReceiptRepository,
		) error {
			return receiptRepo.Create(ctx, &receipt)
		})
		if lastErr == nil {
			return &receipt, nil
		}
		if !errors.Is(lastErr, domain.ErrDuplicate) {
			break
		}
	}
	return nil, fmt.Errorf("guardar recibo: %w", lastErr)
}

// GetPayment obtiene un pago por ID.
func (uc *PaymentUseCase) GetPayment(ctx context.Context, id string) (*dto.PaymentResponse, error) {
	p, err := uc.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return toPaymentResponse(p), nil
}

// GetPaymentByReference obtiene un pago por su número de referencia.
func (uc *PaymentUseCase) GetPaymentByReference(ctx context.Context, reference string) (*dto.PaymentResponse, error) {
	p, err := uc.paymentRepo.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return toPaymentResponse(p), nil
}

// ListPaymentsByInvoice pagos de una factura, más recientes primero.
func (uc *PaymentUseCase) ListPaymentsByInvoice(ctx context.Context, invoiceID string) (*dto.ListResponse[dto.PaymentResponse], error) {
	list, err := uc.paymentRepo.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return toPaymentList(list, len(list), 0), nil
}

// ListPayments lista pagos con filtros de estado y medio.
func (uc *PaymentUseCase) ListPayments(ctx context.Context, q dto.PaymentListQuery) (*dto.ListResponse[dto.PaymentResponse], error) {
	status := entity.PaymentStatus(q.Status)
	if status != "" && !status.Valid() {
		return nil, domain.NewValidationError("status", "estado de pago desconocido")
	}
	method := entity.PaymentMethod(q.PaymentMethod)
	if method != "" && !method.Valid() {
		return nil, domain.NewValidationError("payment_method", "medio de pago no soportado")
	}
	limit, offset := normalizePage(q.Limit, q.Offset)
	list, err := uc.paymentRepo.List(ctx, repository.PaymentFilter{
		Status: status,
		Method: method,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, err
	}
	return toPaymentList(list, limit, offset), nil
}

// Statistics agregados de pagos; invoiceID vacío = todos.
func (uc *PaymentUseCase) Statistics(ctx context.Context, invoiceID string) (*dto.PaymentStatisticsResponse, error) {
	s, err := uc.paymentRepo.Statistics(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return &dto.PaymentStatisticsResponse{
		Total:       s.Total,
		TotalAmount: s.TotalAmount,
		Completed:   s.Completed,
		Pending:     s.Pending,
		Failed:      s.Failed,
	}, nil
}
