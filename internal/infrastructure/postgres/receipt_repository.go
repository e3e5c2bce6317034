package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Billing-api/internal/domain/entity"
	"github.com/jhoicas/Billing-api/internal/domain/repository"
)

var _ repository.ReceiptRepository = (*ReceiptRepo)(nil)

// ReceiptRepo implementación de ReceiptRepository (usable con pool o tx).
type ReceiptRepo struct {
	q Querier
}

// NewReceiptRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReceiptRepository(q Querier) *ReceiptRepo {
	return &ReceiptRepo{q: q}
}

const receiptColumns = `
	id, payment_id, invoice_id, receipt_number, receipt_date,
	total_paid, remaining_balance, payment_method, notes, created_at, updated_at`

// Create persiste cabecera y líneas del recibo.
func (r *ReceiptRepo) Create(ctx context.Context, rc *entity.Receipt) error {
	if rc.ID == "" {
		rc.ID = uuid.New().String()
	}
	query := `
		INSERT INTO receipts (` + receiptColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		rc.ID, rc.PaymentID, rc.InvoiceID, rc.Number, rc.ReceiptDate,
		rc.TotalPaid, rc.RemainingBalance, string(rc.PaymentMethod), nullIfEmpty(rc.Notes),
		rc.CreatedAt, rc.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return duplicate("recibo "+rc.Number, err)
		}
		return fmt.Errorf("insert receipt: %w", err)
	}

	batch := &pgx.Batch{}
	for i := range rc.Items {
		it := &rc.Items[i]
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.ReceiptID = rc.ID
		batch.Queue(`
			INSERT INTO receipt_items (id, receipt_id, invoice_item_id, position, description, quantity, unit_price, line_total, tax_amount, paid_amount, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			it.ID, it.ReceiptID, nullIfEmpty(it.InvoiceItemID), i, it.Description, it.Quantity, it.UnitPrice,
			it.LineTotal, it.TaxAmount, it.PaidAmount, it.CreatedAt,
		)
	}
	if err := r.q.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert receipt items: %w", err)
	}
	return nil
}

// GetByID obtiene un recibo con sus líneas.
func (r *ReceiptRepo) GetByID(ctx context.Context, id string) (*entity.Receipt, error) {
	if !validUUID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+receiptColumns+` FROM receipts WHERE id = $1`, id)
}

// GetByPaymentID obtiene el recibo de un pago.
func (r *ReceiptRepo) GetByPaymentID(ctx context.Context, paymentID string) (*entity.Receipt, error) {
	if !validUUID(paymentID) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+receiptColumns+` FROM receipts WHERE payment_id = $1`, paymentID)
}

// GetByNumber obtiene un recibo por número.
func (r *ReceiptRepo) GetByNumber(ctx context.Context, number string) (*entity.Receipt, error) {
	return r.getOne(ctx, `SELECT `+receiptColumns+` FROM receipts WHERE receipt_number = $1`, number)
}

func (r *ReceiptRepo) getOne(ctx context.Context, query string, arg any) (*entity.Receipt, error) {
	rc, err := scanReceipt(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get receipt: %w", err)
	}
	if err := r.attachItems(ctx, []*entity.Receipt{rc}); err != nil {
		return nil, err
	}
	return rc, nil
}

// ListByInvoice recibos de una factura, más recientes primero.
func (r *ReceiptRepo) ListByInvoice(ctx context.Context, invoiceID string) ([]*entity.Receipt, error) {
	if !validUUID(invoiceID) {
		return nil, nil
	}
	return r.list(ctx, `SELECT `+receiptColumns+` FROM receipts WHERE invoice_id = $1
		ORDER BY created_at DESC, receipt_number DESC`, invoiceID)
}

// List recibos paginados, más recientes primero.
func (r *ReceiptRepo) List(ctx context.Context, limit, offset int) ([]*entity.Receipt, error) {
	return r.list(ctx, `SELECT `+receiptColumns+` FROM receipts
		ORDER BY created_at DESC, receipt_number DESC LIMIT $1 OFFSET $2`, limit, offset)
}

func (r *ReceiptRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Receipt, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	defer rows.Close()
	var list []*entity.Receipt
	for rows.Next() {
		rc, err := scanReceipt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan receipt: %w", err)
		}
		list = append(list, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *ReceiptRepo) attachItems(ctx context.Context, receipts []*entity.Receipt) error {
	if len(receipts) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Receipt, len(receipts))
	ids := make([]string, 0, len(receipts))
	for _, rc := range receipts {
		byID[rc.ID] = rc
		ids = append(ids, rc.ID)
	}
	query := `
		SELECT id, receipt_id, invoice_item_id, description, quantity, unit_price, line_total, tax_amount, paid_amount, created_at
		FROM receipt_items WHERE receipt_id = ANY($1) ORDER BY receipt_id, position`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("list receipt items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			it            entity.ReceiptLineItem
			invoiceItemID *string
		)
		if err := rows.Scan(&it.ID, &it.ReceiptID, &invoiceItemID, &it.Description, &it.Quantity, &it.UnitPrice,
			&it.LineTotal, &it.TaxAmount, &it.PaidAmount, &it.CreatedAt); err != nil {
			return fmt.Errorf("scan receipt item: %w", err)
		}
		it.InvoiceItemID = derefStr(invoiceItemID)
		rc := byID[it.ReceiptID]
		rc.Items = append(rc.Items, it)
	}
	return rows.Err()
}

func scanReceipt(row pgx.Row) (*entity.Receipt, error) {
	var (
		rc     entity.Receipt
		method string
		notes  *string
	)
	err := row.Scan(
		&rc.ID, &rc.PaymentID, &rc.InvoiceID, &rc.Number, &rc.ReceiptDate,
		&rc.TotalPaid, &rc.RemainingBalance, &method, &notes, &rc.CreatedAt, &rc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rc.PaymentMethod = entity.PaymentMethod(method)
	rc.Notes = derefStr(notes)
	return &rc, nil
}
