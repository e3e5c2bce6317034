package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Billing-api/internal/domain"
	"github.com/jhoicas/Billing-api/internal/domain/entity"
	"github.com/jhoicas/Billing-api/internal/domain/repository"
)

var _ repository.PaymentRepository = (*PaymentRepo)(nil)

// PaymentRepo implementación de PaymentRepository (usable con pool o tx).
type PaymentRepo struct {
	q Querier
}

// NewPaymentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPaymentRepository(q Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

const paymentColumns = `
	id, invoice_id, payment_method, amount, payment_date,
	reference_number, status, notes, created_at, updated_at`

// Create persiste el pago. Referencia repetida: domain.ErrDuplicate.
func (r *PaymentRepo) Create(ctx context.Context, p *entity.Payment) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.InvoiceID, string(p.Method), p.Amount, p.PaymentDate,
		p.ReferenceNumber, string(p.Status), nullIfEmpty(p.Notes), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return duplicate("referencia de pago "+p.ReferenceNumber, err)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: factura %s", domain.ErrNotFound, p.InvoiceID)
		}
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// GetByID obtiene un pago por ID.
func (r *PaymentRepo) GetByID(ctx context.Context, id string) (*entity.Payment, error) {
	if !validUUID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
}

// GetByReference obtiene un pago por número de referencia.
func (r *PaymentRepo) GetByReference(ctx context.Context, reference string) (*entity.Payment, error) {
	return r.getOne(ctx, `SELECT `+paymentColumns+` FROM payments WHERE reference_number = $1`, reference)
}

func (r *PaymentRepo) getOne(ctx context.Context, query string, arg any) (*entity.Payment, error) {
	p, err := scanPayment(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return p, nil
}

// ListByInvoice pagos de una factura, más recientes primero.
func (r *PaymentRepo) ListByInvoice(ctx context.Context, invoiceID string) ([]*entity.Payment, error) {
	if !validUUID(invoiceID) {
		return nil, nil
	}
	return r.list(ctx, `SELECT `+paymentColumns+` FROM payments WHERE invoice_id = $1
		ORDER BY created_at DESC, reference_number DESC`, invoiceID)
}

// List pagos con filtros de estado y medio.
func (r *PaymentRepo) List(ctx context.Context, filter repository.PaymentFilter) ([]*entity.Payment, error) {
	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Method != "" {
		args = append(args, string(filter.Method))
		where = append(where, fmt.Sprintf("payment_method = $%d", len(args)))
	}
	query := `SELECT ` + paymentColumns + ` FROM payments`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC, reference_number DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	return r.list(ctx, query, args...)
}

// ListWithoutReceipt pagos completados sin recibo, más antiguos primero.
func (r *PaymentRepo) ListWithoutReceipt(ctx context.Context, limit int) ([]*entity.Payment, error) {
	query := `
		SELECT p.id, p.invoice_id, p.payment_method, p.amount, p.payment_date,
		       p.reference_number, p.status, p.notes, p.created_at, p.updated_at
		FROM payments p
		LEFT JOIN receipts rc ON rc.payment_id = p.id
		WHERE rc.id IS NULL AND p.status = 'completed'
		ORDER BY p.created_at
		LIMIT $1`
	return r.list(ctx, query, limit)
}

// Statistics agregados de pagos; invoiceID vacío = todos.
func (r *PaymentRepo) Statistics(ctx context.Context, invoiceID string) (*repository.PaymentStats, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(amount) FILTER (WHERE status = 'completed'), 0),
		       COUNT(*) FILTER (WHERE status = 'completed'),
		       COUNT(*) FILTER (WHERE status = 'pending'),
		       COUNT(*) FILTER (WHERE status = 'failed')
		FROM payments`
	var args []any
	if invoiceID != "" {
		if !validUUID(invoiceID) {
			return &repository.PaymentStats{}, nil
		}
		query += ` WHERE invoice_id = $1`
		args = append(args, invoiceID)
	}
	var s repository.PaymentStats
	if err := r.q.QueryRow(ctx, query, args...).Scan(&s.Total, &s.TotalAmount, &s.Completed, &s.Pending, &s.Failed); err != nil {
		return nil, fmt.Errorf("payment statistics: %w", err)
	}
	return &s, nil
}

func (r *PaymentRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Payment, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()
	var list []*entity.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func scanPayment(row pgx.Row) (*entity.Payment, error) {
	var (
		p              entity.Payment
		method, status string
		notes          *string
	)
	err := row.Scan(
		&p.ID, &p.InvoiceID, &method, &p.Amount, &p.PaymentDate,
		&p.ReferenceNumber, &status, &notes, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Method = entity.PaymentMethod(method)
	p.Status = entity.PaymentStatus(status)
	p.Notes = derefStr(notes)
	return &p, nil
}
