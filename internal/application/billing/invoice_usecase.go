package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Billing-api/internal/application/dto"
	"github.com/jhoicas/Billing-api/internal/domain"
	"github.com/jhoicas/Billing-api/internal/domain/billing"
	"github.com/jhoicas/Billing-api/internal/domain/entity"
	"github.com/jhoicas/Billing-api/internal/domain/repository"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// maxNumberAttempts intentos ante colisión de un número generado (factura, pago o recibo).
const maxNumberAttempts = 3

// editableStatuses estados que se pueden fijar a mano; paid y partially_paid solo los produce un pago.
var editableStatuses = []entity.InvoiceStatus{
	entity.InvoiceStatusDraft,
	entity.InvoiceStatusPending,
	entity.InvoiceStatusCancelled,
	entity.InvoiceStatusOverdue,
}

// InvoiceUseCase alta, consulta y mantenimiento de facturas.
type InvoiceUseCase struct {
	txRunner       BillingTxRunner
	invoiceRepo    repository.InvoiceRepository
	refs           billing.ReferenceGenerator
	defaultTaxRate decimal.Decimal
	now            func() time.Time
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(
	txRunner BillingTxRunner,
	invoiceRepo repository.InvoiceRepository,
	refs billing.ReferenceGenerator,
	defaultTaxRate decimal.Decimal,
	now func() time.Time,
) *InvoiceUseCase {
	if now == nil {
		now = time.Now
	}
	return &InvoiceUseCase{
		txRunner:       txRunner,
		invoiceRepo:    invoiceRepo,
		refs:           refs,
		defaultTaxRate: defaultTaxRate,
		now:            now,
	}
}

// CreateInvoice valida las líneas, calcula totales y guarda cabecera y líneas en una transacción.
// La factura nace en pending con saldo igual al total; con total cero nace pagada.
func (uc *InvoiceUseCase) CreateInvoice(ctx context.Context, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	inputs, err := lineInputs(in.Items)
	if err != nil {
		return nil, err
	}
	totals, err := billing.ComputeTotals(inputs, uc.defaultTaxRate)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	issueDate := now
	if in.IssueDate != nil {
		issueDate = *in.IssueDate
	}
	if in.DueDate != nil && in.DueDate.Before(issueDate) {
		return nil, domain.NewValidationError("due_date", "la fecha de vencimiento no puede ser anterior a la emisión")
	}

	inv := &entity.Invoice{
		IssueDate:         issueDate,
		DueDate:           in.DueDate,
		CustomerID:        strings.TrimSpace(in.CustomerID),
		CustomerName:      strings.TrimSpace(in.CustomerName),
		CustomerEmail:     strings.TrimSpace(in.CustomerEmail),
		Subtotal:          totals.Subtotal,
		TotalTax:          totals.TotalTax,
		TotalAmount:       totals.TotalAmount,
		OutstandingAmount: totals.TotalAmount,
		Status:            entity.InvoiceStatusPending,
		Notes:             in.Notes,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if totals.TotalAmount.IsZero() {
		inv.Status = entity.InvoiceStatusPaid
	}
	for _, input := range inputs {
		fig := billing.ComputeLine(input, uc.defaultTaxRate)
		inv.Items = append(inv.Items, entity.InvoiceLineItem{
			Description: input.Description,
			Quantity:    input.Quantity,
			UnitPrice:   input.UnitPrice,
			LineTotal:   fig.LineTotal,
			TaxRate:     fig.TaxRate,
			TaxAmount:   fig.TaxAmount,
			CreatedAt:   now,
		})
	}

	supplied := strings.TrimSpace(in.InvoiceNumber)
	for attempt := 1; ; attempt++ {
		inv.Number = supplied
		if inv.Number == "" {
			inv.Number = uc.refs.Generate(billing.PrefixInvoice, now)
		}
		err = uc.txRunner.RunBilling(ctx, func(
			invoiceRepo repository.InvoiceRepository,
			_ repository.PaymentRepository,
			_ repository.ReceiptRepository,
		) error {
			return invoiceRepo.Create(ctx, inv)
		})
		if err == nil {
			break
		}
		if errors.Is(err, domain.ErrDuplicate) && supplied == "" && attempt < maxNumberAttempts {
			inv.ID = ""
			for i := range inv.Items {
				inv.Items[i].ID = ""
				inv.Items[i].InvoiceID = ""
			}
			continue
		}
		return nil, err
	}
	return toInvoiceResponse(inv), nil
}

// lineInputs convierte y valida las líneas de la solicitud (reglas de formato;
// cantidad y precio los valida ComputeTotals).
func lineInputs(items []dto.InvoiceItemRequest) ([]billing.LineItemInput, error) {
	inputs := make([]billing.LineItemInput, 0, len(items))
	for i, it := range items {
		field := func(name string) string { return fmt.Sprintf("items[%d].%s", i, name) }
		desc := strings.TrimSpace(it.Description)
		if desc == "" {
			return nil, domain.NewValidationError(field("description"), "la descripción es obligatoria")
		}
		if billing.ExceedsPrecision(it.Quantity, 2) {
			return nil, domain.NewValidationError(field("quantity"), "la cantidad admite como máximo 2 decimales")
		}
		if billing.ExceedsPrecision(it.UnitPrice, 2) {
			return nil, domain.NewValidationError(field("unit_price"), "el precio unitario admite como máximo 2 decimales")
		}
		if it.TaxRate.Valid {
			if !billing.ValidTaxRate(it.TaxRate.Decimal) {
				return nil, domain.NewValidationError(field("tax_rate"), "la tasa de impuesto debe estar entre 0 y 1")
			}
			if billing.ExceedsPrecision(it.TaxRate.Decimal, 4) {
				return nil, domain.NewValidationError(field("tax_rate"), "la tasa de impuesto admite como máximo 4 decimales")
			}
		}
		inputs = append(inputs, billing.LineItemInput{
			Description: desc,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TaxRate:     it.TaxRate,
		})
	}
	return inputs, nil
}

// GetInvoice obtiene una factura por ID con sus líneas.
func (uc *InvoiceUseCase) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv), nil
}

// GetInvoiceByNumber obtiene una factura por su número.
func (uc *InvoiceUseCase) GetInvoiceByNumber(ctx context.Context, number string) (*dto.InvoiceResponse, error) {
	inv, err := uc.invoiceRepo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	return toInvoiceResponse(inv), nil
}

// ListInvoices lista facturas (más recientes primero) con filtros opcionales.
func (uc *InvoiceUseCase) ListInvoices(ctx context.Context, q dto.InvoiceListQuery) (*dto.ListResponse[dto.InvoiceResponse], error) {
	status := entity.InvoiceStatus(q.Status)
	if status != "" && !status.Valid() {
		return nil, domain.NewValidationError("status", "estado de factura desconocido")
	}
	limit, offset := normalizePage(q.Limit, q.Offset)
	list, err := uc.invoiceRepo.List(ctx, repository.InvoiceFilter{
		Status:     status,
		CustomerID: q.CustomerID,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return nil, err
	}
	return toInvoiceList(list, limit, offset), nil
}

// UpdateInvoice modifica los campos de cabecera con la fila bloqueada, para no pisar
// un pago concurrente. Una factura pagada no se modifica; el estado solo se escribe
// si viene en la petición y pending exige que no haya nada abonado.
func (uc *InvoiceUseCase) UpdateInvoice(ctx context.Context, id string, in dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error) {
	var out *entity.Invoice
	err := uc.txRunner.RunBilling(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		_ repository.PaymentRepository,
		_ repository.ReceiptRepository,
	) error {
		inv, err := invoiceRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrNotFound
		}
		if inv.Status == entity.InvoiceStatusPaid {
			return domain.NewValidationError("status", "no se puede modificar una factura pagada")
		}

		if in.DueDate != nil {
			if in.DueDate.Before(inv.IssueDate) {
				return domain.NewValidationError("due_date", "la fecha de vencimiento no puede ser anterior a la emisión")
			}
			inv.DueDate = in.DueDate
		}
		if in.CustomerName != nil {
			inv.CustomerName = strings.TrimSpace(*in.CustomerName)
		}
		if in.CustomerEmail != nil {
			inv.CustomerEmail = strings.TrimSpace(*in.CustomerEmail)
		}
		if in.Notes != nil {
			inv.Notes = *in.Notes
		}
		var status entity.InvoiceStatus
		if in.Status != nil {
			status = entity.InvoiceStatus(*in.Status)
			if !lo.Contains(editableStatuses, status) {
				return domain.NewValidationError("status", "el estado solo puede fijarse en draft, pending, cancelled u overdue")
			}
			if status == entity.InvoiceStatusPending && !inv.OutstandingAmount.Equal(inv.TotalAmount) {
				return domain.NewValidationError("status", "pending solo aplica a facturas sin abonos")
			}
		}
		inv.UpdatedAt = uc.now()

		if err := invoiceRepo.Update(ctx, inv); err != nil {
			return err
		}
		if status != "" {
			if err := invoiceRepo.UpdateStatus(ctx, inv.ID, status, inv.UpdatedAt); err != nil {
				return err
			}
			inv.Status = status
		}
		out = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(out), nil
}

// DeleteInvoice elimina una factura sin pagos (las líneas se borran en cascada).
func (uc *InvoiceUseCase) DeleteInvoice(ctx context.Context, id string) error {
	inv, err := uc.load(ctx, id)
	if err != nil {
		return err
	}
	if inv.HasPayments() {
		return domain.NewValidationError("invoice", "no se puede eliminar una factura con pagos registrados")
	}
	return uc.invoiceRepo.Delete(ctx, id)
}

// Statistics agregados por estado, total facturado y saldo pendiente.
func (uc *InvoiceUseCase) Statistics(ctx context.Context) (*dto.InvoiceStatisticsResponse, error) {
	stats, err := uc.invoiceRepo.Statistics(ctx)
	if err != nil {
		return nil, err
	}
	return toInvoiceStats(stats), nil
}

// MarkOverdue pasa a overdue las facturas pending/partially_paid vencidas.
func (uc *InvoiceUseCase) MarkOverdue(ctx context.Context) (*dto.MarkOverdueResponse, error) {
	n, err := uc.invoiceRepo.MarkOverdue(ctx, uc.now())
	if err != nil {
		return nil, fmt.Errorf("marcar vencidas: %w", err)
	}
	return &dto.MarkOverdueResponse{Updated: n}, nil
}

func (uc *InvoiceUseCase) load(ctx context.Context, id string) (*entity.Invoice, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}
