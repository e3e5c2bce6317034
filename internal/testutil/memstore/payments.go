package memstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/Billing-api/internal/domain"
	"github.com/jhoicas/Billing-api/internal/domain/entity"
	"github.com/jhoicas/Billing-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

type paymentRepo struct{ sc scope }

func (r *paymentRepo) Create(_ context.Context, p *entity.Payment) error {
	return r.sc.do(func(st *state) error {
		found := false
		for _, inv := range st.invoices {
			if inv.ID == p.InvoiceID {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: factura %s", domain.ErrNotFound, p.InvoiceID)
		}
		for _, existing := range st.payments {
			if existing.ReferenceNumber == p.ReferenceNumber {
				return fmt.Errorf("%w: referencia de pago %s", domain.ErrDuplicate, p.ReferenceNumber)
			}
		}
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		st.payments = append(st.payments, *p)
		return nil
	})
}

func (r *paymentRepo) find(pred func(entity.Payment) bool) (*entity.Payment, error) {
	var out *entity.Payment
	err := r.sc.do(func(st *state) error {
		for _, p := range st.payments {
			if pred(p) {
				cp := p
				out = &cp
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *paymentRepo) GetByID(_ context.Context, id string) (*entity.Payment, error) {
	return r.find(func(p entity.Payment) bool { return p.ID == id })
}

func (r *paymentRepo) GetByReference(_ context.Context, reference string) (*entity.Payment, error) {
	return r.find(func(p entity.Payment) bool { return p.ReferenceNumber == reference })
}

func (r *paymentRepo) filter(pred func(entity.Payment) bool, limit, offset int) ([]*entity.Payment, error) {
	var out []*entity.Payment
	err := r.sc.do(func(st *state) error {
		var matched []entity.Payment
		for _, p := range newestFirst(st.payments) {
			if pred(p) {
				matched = append(matched, p)
			}
		}
		for _, p := range page(matched, limit, offset) {
			cp := p
			out = append(out, &cp)
		}
		return nil
	})
	return out, err
}

func (r *paymentRepo) ListByInvoice(_ context.Context, invoiceID string) ([]*entity.Payment, error) {
	return r.filter(func(p entity.Payment) bool { return p.InvoiceID == invoiceID }, 0, 0)
}

func (r *paymentRepo) List(_ context.Context, f repository.PaymentFilter) ([]*entity.Payment, error) {
	return r.filter(func(p entity.Payment) bool {
		return (f.Status == "" || p.Status == f.Status) && (f.Method == "" || p.Method == f.Method)
	}, f.Limit, f.Offset)
}

func (r *paymentRepo) ListWithoutReceipt(_ context.Context, limit int) ([]*entity.Payment, error) {
	var out []*entity.Payment
	err := r.sc.do(func(st *state) error {
		receipted := make(map[string]bool, len(st.receipts))
		for _, rc := range st.receipts {
			receipted[rc.PaymentID] = true
		}
		for _, p := range st.payments {
			if p.Status != entity.PaymentStatusCompleted || receipted[p.ID] {
				continue
			}
			cp := p
			out = append(out, &cp)
			if limit > 0 && len(out) == limit {
				break
			}
		}
		return nil
	})
	return out, err
}

func (r *paymentRepo) Statistics(_ context.Context, invoiceID string) (*repository.PaymentStats, error) {
	stats := &repository.PaymentStats{TotalAmount: decimal.Zero}
	err := r.sc.do(func(st *state) error {
		for _, p := range st.payments {
			if invoiceID != "" && p.InvoiceID != invoiceID {
				continue
			}
			stats.Total++
			switch p.Status {
			case entity.PaymentStatusCompleted:
				stats.Completed++
				stats.TotalAmount = stats.TotalAmount.Add(p.Amount)
			case entity.PaymentStatusPending:
				stats.Pending++
			case entity.PaymentStatusFailed:
				stats.Failed++
			}
		}
		return nil
	})
	return stats, err
}
