package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Billing-api/internal/domain"
	"github.com/jhoicas/Billing-api/internal/domain/entity"
	"github.com/jhoicas/Billing-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `
	id, invoice_number, issue_date, due_date,
	customer_id, customer_name, customer_email,
	subtotal, total_tax, total_amount, outstanding_amount,
	status, notes, created_at, updated_at`

// Create persiste la cabecera y las líneas de la factura.
func (r *InvoiceRepo) Create(ctx context.Context, invoice *entity.Invoice) error {
	if invoice.ID == "" {
		invoice.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		invoice.ID, invoice.Number, invoice.IssueDate, invoice.DueDate,
		nullIfEmpty(invoice.CustomerID), nullIfEmpty(invoice.CustomerName), nullIfEmpty(invoice.CustomerEmail),
		invoice.Subtotal, invoice.TotalTax, invoice.TotalAmount, invoice.OutstandingAmount,
		string(invoice.Status), nullIfEmpty(invoice.Notes), invoice.CreatedAt, invoice.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return duplicate("número de factura "+invoice.Number, err)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}

	batch := &pgx.Batch{}
	for i := range invoice.Items {
		it := &invoice.Items[i]
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.InvoiceID = invoice.ID
		if it.CreatedAt.IsZero() {
			it.CreatedAt = invoice.CreatedAt
		}
		batch.Queue(`
			INSERT INTO invoice_items (id, invoice_id, position, description, quantity, unit_price, line_total, tax_rate, tax_amount, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			it.ID, it.InvoiceID, i, it.Description, it.Quantity, it.UnitPrice,
			it.LineTotal, it.TaxRate, it.TaxAmount, it.CreatedAt,
		)
	}
	if err := r.q.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert invoice items: %w", err)
	}
	return nil
}

// GetByID obtiene una factura completa (cabecera y líneas) por ID.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	if !validUUID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)
}

// GetByIDForUpdate igual que GetByID pero con SELECT ... FOR UPDATE (solo dentro de una tx).
func (r *InvoiceRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	if !validUUID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1 FOR UPDATE`, id)
}

// GetByNumber obtiene una factura por su número.
func (r *InvoiceRepo) GetByNumber(ctx context.Context, number string) (*entity.Invoice, error) {
	return r.getOne(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE invoice_number = $1`, number)
}

func (r *InvoiceRepo) getOne(ctx context.Context, query string, arg any) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	items, err := r.itemsByInvoice(ctx, []string{inv.ID})
	if err != nil {
		return nil, err
	}
	inv.Items = items[inv.ID]
	return inv, nil
}

// List lista facturas con filtros, más recientes primero. Las líneas se cargan en una sola consulta.
func (r *InvoiceRepo) List(ctx context.Context, filter repository.InvoiceFilter) ([]*entity.Invoice, error) {
	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.CustomerID != "" {
		args = append(args, filter.CustomerID)
		where = append(where, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	query := `SELECT ` + invoiceColumns + ` FROM invoices`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC, invoice_number DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var (
		list []*entity.Invoice
		ids  []string
	)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
		ids = append(ids, inv.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return list, nil
	}
	items, err := r.itemsByInvoice(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, inv := range list {
		inv.Items = items[inv.ID]
	}
	return list, nil
}

// Update actualiza los campos editables de la cabecera. El estado no se escribe aquí.
func (r *InvoiceRepo) Update(ctx context.Context, invoice *entity.Invoice) error {
	query := `
		UPDATE invoices
		SET due_date       = $2,
		    customer_id    = $3,
		    customer_name  = $4,
		    customer_email = $5,
		    notes          = $6,
		    updated_at     = $7
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		invoice.ID, invoice.DueDate,
		nullIfEmpty(invoice.CustomerID), nullIfEmpty(invoice.CustomerName), nullIfEmpty(invoice.CustomerEmail),
		nullIfEmpty(invoice.Notes), invoice.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStatus fija el estado a mano.
func (r *InvoiceRepo) UpdateStatus(ctx context.Context, id string, status entity.InvoiceStatus, updatedAt time.Time) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE invoices SET status = $2, updated_at = $3 WHERE id = $1`,
		id, string(status), updatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateBalance actualiza saldo y estado tras aplicar un pago.
func (r *InvoiceRepo) UpdateBalance(ctx context.Context, id string, outstanding decimal.Decimal, status entity.InvoiceStatus, updatedAt time.Time) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE invoices SET outstanding_amount = $2, status = $3, updated_at = $4 WHERE id = $1`,
		id, outstanding, string(status), updatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina la factura y sus líneas. Con pagos asociados: domain.ErrConflict.
func (r *InvoiceRepo) Delete(ctx context.Context, id string) error {
	if !validUUID(id) {
		return domain.ErrNotFound
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: la factura tiene pagos", domain.ErrConflict)
		}
		return fmt.Errorf("delete invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkOverdue pasa a overdue las facturas con saldo cuyo vencimiento ya pasó.
func (r *InvoiceRepo) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE invoices
		SET status = 'overdue', updated_at = $1
		WHERE due_date < $1
		  AND outstanding_amount > 0
		  AND status IN ('pending', 'partially_paid')`, now)
	if err != nil {
		return 0, fmt.Errorf("mark overdue invoices: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Statistics conteos por estado y montos agregados.
func (r *InvoiceRepo) Statistics(ctx context.Context) (*repository.InvoiceStats, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'draft'),
		       COUNT(*) FILTER (WHERE status = 'pending'),
		       COUNT(*) FILTER (WHERE status = 'partially_paid'),
		       COUNT(*) FILTER (WHERE status = 'paid'),
		       COUNT(*) FILTER (WHERE status = 'cancelled'),
		       COUNT(*) FILTER (WHERE status = 'overdue'),
		       COALESCE(SUM(total_amount), 0),
		       COALESCE(SUM(outstanding_amount), 0)
		FROM invoices`
	var s repository.InvoiceStats
	err := r.q.QueryRow(ctx, query).Scan(
		&s.Total, &s.Draft, &s.Pending, &s.PartiallyPaid, &s.Paid, &s.Cancelled, &s.Overdue,
		&s.TotalAmount, &s.TotalOutstanding,
	)
	if err != nil {
		return nil, fmt.Errorf("invoice statistics: %w", err)
	}
	return &s, nil
}

func (r *InvoiceRepo) itemsByInvoice(ctx context.Context, invoiceIDs []string) (map[string][]entity.InvoiceLineItem, error) {
	query := `
		SELECT id, invoice_id, description, quantity, unit_price, line_total, tax_rate, tax_amount, created_at
		FROM invoice_items WHERE invoice_id = ANY($1) ORDER BY invoice_id, position`
	rows, err := r.q.Query(ctx, query, invoiceIDs)
	if err != nil {
		return nil, fmt.Errorf("list invoice items: %w", err)
	}
	defer rows.Close()
	out := make(map[string][]entity.InvoiceLineItem, len(invoiceIDs))
	for rows.Next() {
		var it entity.InvoiceLineItem
		if err := rows.Scan(&it.ID, &it.InvoiceID, &it.Description, &it.Quantity, &it.UnitPrice,
			&it.LineTotal, &it.TaxRate, &it.TaxAmount, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		out[it.InvoiceID] = append(out[it.InvoiceID], it)
	}
	return out, rows.Err()
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var (
		inv                             entity.Invoice
		customerID, customerName, email *string
		notes                           *string
		status                          string
	)
	err := row.Scan(
		&inv.ID, &inv.Number, &inv.IssueDate, &inv.DueDate,
		&customerID, &customerName, &email,
		&inv.Subtotal, &inv.TotalTax, &inv.TotalAmount, &inv.OutstandingAmount,
		&status, &notes, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.CustomerID = derefStr(customerID)
	inv.CustomerName = derefStr(customerName)
	inv.CustomerEmail = derefStr(email)
	inv.Notes = derefStr(notes)
	inv.Status = entity.InvoiceStatus(status)
	return &inv, nil
}
