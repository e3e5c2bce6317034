package memstore

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Billing-api/internal/domain"
	"github.com/jhoicas/Billing-api/internal/domain/entity"
	"github.com/jhoicas/Billing-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

type invoiceRepo struct{ sc scope }

func cloneInvoice(inv entity.Invoice) *entity.Invoice {
	inv.Items = slices.Clone(inv.Items)
	return &inv
}

func (r *invoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	return r.sc.do(func(st *state) error {
		for _, existing := range st.invoices {
			if existing.Number == inv.Number {
				return fmt.Errorf("%w: número de factura %s", domain.ErrDuplicate, inv.Number)
			}
		}
		if inv.ID == "" {
			inv.ID = uuid.New().String()
		}
		for i := range inv.Items {
			if inv.Items[i].ID == "" {
				inv.Items[i].ID = uuid.New().String()
			}
			inv.Items[i].InvoiceID = inv.ID
		}
		st.invoices = append(st.invoices, *cloneInvoice(*inv))
		return nil
	})
}

func (r *invoiceRepo) find(pred func(entity.Invoice) bool) (*entity.Invoice, error) {
	var out *entity.Invoice
	err := r.sc.do(func(st *state) error {
		for _, inv := range st.invoices {
			if pred(inv) {
				out = cloneInvoice(inv)
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *invoiceRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	return r.find(func(inv entity.Invoice) bool { return inv.ID == id })
}

func (r *invoiceRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.GetByID(ctx, id)
}

func (r *invoiceRepo) GetByNumber(_ context.Context, number string) (*entity.Invoice, error) {
	return r.find(func(inv entity.Invoice) bool { return inv.Number == number })
}

func (r *invoiceRepo) List(_ context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, error) {
	var out []*entity.Invoice
	err := r.sc.do(func(st *state) error {
		list := newestFirst(st.invoices)
		sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
		var matched []entity.Invoice
		for _, inv := range list {
			if f.Status != "" && inv.Status != f.Status {
				continue
			}
			if f.CustomerID != "" && inv.CustomerID != f.CustomerID {
				continue
			}
			matched = append(matched, inv)
		}
		for _, inv := range page(matched, f.Limit, f.Offset) {
			out = append(out, cloneInvoice(inv))
		}
		return nil
	})
	return out, err
}

func (r *invoiceRepo) update(id string, fn func(inv *entity.Invoice)) error {
	return r.sc.do(func(st *state) error {
		for i := range st.invoices {
			if st.invoices[i].ID == id {
				fn(&st.invoices[i])
				return nil
			}
		}
		return domain.ErrNotFound
	})
}

func (r *invoiceRepo) Update(_ context.Context, inv *entity.Invoice) error {
	return r.update(inv.ID, func(stored *entity.Invoice) {
		stored.DueDate = inv.DueDate
		stored.CustomerName = inv.CustomerName
		stored.CustomerEmail = inv.CustomerEmail
		stored.Notes = inv.Notes
		stored.UpdatedAt = inv.UpdatedAt
	})
}

func (r *invoiceRepo) UpdateStatus(_ context.Context, id string, status entity.InvoiceStatus, updatedAt time.Time) error {
	return r.update(id, func(stored *entity.Invoice) {
		stored.Status = status
		stored.UpdatedAt = updatedAt
	})
}

func (r *invoiceRepo) UpdateBalance(_ context.Context, id string, outstanding decimal.Decimal, status entity.InvoiceStatus, updatedAt time.Time) error {
	return r.update(id, func(stored *entity.Invoice) {
		stored.OutstandingAmount = outstanding
		stored.Status = status
		stored.UpdatedAt = updatedAt
	})
}

func (r *invoiceRepo) Delete(_ context.Context, id string) error {
	return r.sc.do(func(st *state) error {
		for _, p := range st.payments {
			if p.InvoiceID == id {
				return fmt.Errorf("%w: la factura tiene pagos", domain.ErrConflict)
			}
		}
		before := len(st.invoices)
		st.invoices = slices.DeleteFunc(st.invoices, func(inv entity.Invoice) bool { return inv.ID == id })
		if len(st.invoices) == before {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (r *invoiceRepo) MarkOverdue(_ context.Context, now time.Time) (int64, error) {
	var n int64
	err := r.sc.do(func(st *state) error {
		for i := range st.invoices {
			inv := &st.invoices[i]
			if inv.Status != entity.InvoiceStatusPending && inv.Status != entity.InvoiceStatusPartiallyPaid {
				continue
			}
			if inv.IsPastDue(now) {
				inv.Status = entity.InvoiceStatusOverdue
				inv.UpdatedAt = now
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *invoiceRepo) Statistics(_ context.Context) (*repository.InvoiceStats, error) {
	stats := &repository.InvoiceStats{TotalAmount: decimal.Zero, TotalOutstanding: decimal.Zero}
	err := r.sc.do(func(st *state) error {
		for _, inv := range st.invoices {
			stats.Total++
			stats.TotalAmount = stats.TotalAmount.Add(inv.TotalAmount)
			stats.TotalOutstanding = stats.TotalOutstanding.Add(inv.OutstandingAmount)
			switch inv.Status {
			case entity.InvoiceStatusDraft:
				stats.Draft++
			case entity.InvoiceStatusPending:
				stats.Pending++
			case entity.InvoiceStatusPartiallyPaid:
				stats.PartiallyPaid++
			case entity.InvoiceStatusPaid:
				stats.Paid++
			case entity.InvoiceStatusCancelled:
				stats.Cancelled++
			case entity.InvoiceStatusOverdue:
				stats.Overdue++
			}
		}
		return nil
	})
	return stats, err
}
