package memstore

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/jhoicas/Billing-api/internal/domain"
	"github.com/jhoicas/Billing-api/internal/domain/entity"
)

type receiptRepo struct{ sc scope }

func cloneReceipt(r entity.Receipt) *entity.Receipt {
	r.Items = slices.Clone(r.Items)
	return &r
}

func (r *receiptRepo) Create(_ context.Context, rc *entity.Receipt) error {
	return r.sc.do(func(st *state) error {
		if err := r.sc.s.failReceipt; err != nil {
			return err
		}
		for _, existing := range st.receipts {
			if existing.Number == rc.Number {
				return fmt.Errorf("%w: número de recibo %s", domain.ErrDuplicate, rc.Number)
			}
			if existing.PaymentID == rc.PaymentID {
				return fmt.Errorf("%w: el pago %s ya tiene recibo", domain.ErrDuplicate, rc.PaymentID)
			}
		}
		if rc.ID == "" {
			rc.ID = uuid.New().String()
		}
		for i := range rc.Items {
			if rc.Items[i].ID == "" {
				rc.Items[i].ID = uuid.New().String()
			}
			rc.Items[i].ReceiptID = rc.ID
		}
		st.receipts = append(st.receipts, *cloneReceipt(*rc))
		return nil
	})
}

func (r *receiptRepo) find(pred func(entity.Receipt) bool) (*entity.Receipt, error) {
	var out *entity.Receipt
	err := r.sc.do(func(st *state) error {
		for _, rc := range st.receipts {
			if pred(rc) {
				out = cloneReceipt(rc)
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *receiptRepo) GetByID(_ context.Context, id string) (*entity.Receipt, error) {
	return r.find(func(rc entity.Receipt) bool { return rc.ID == id })
}

func (r *receiptRepo) GetByPaymentID(_ context.Context, paymentID string) (*entity.Receipt, error) {
	return r.find(func(rc entity.Receipt) bool { return rc.PaymentID == paymentID })
}

func (r *receiptRepo) GetByNumber(_ context.Context, number string) (*entity.Receipt, error) {
	return r.find(func(rc entity.Receipt) bool { return rc.Number == number })
}

func (r *receiptRepo) ListByInvoice(_ context.Context, invoiceID string) ([]*entity.Receipt, error) {
	var out []*entity.Receipt
	err := r.sc.do(func(st *state) error {
		for _, rc := range newestFirst(st.receipts) {
			if rc.InvoiceID == invoiceID {
				out = append(out, cloneReceipt(rc))
			}
		}
		return nil
	})
	return out, err
}

func (r *receiptRepo) List(_ context.Context, limit, offset int) ([]*entity.Receipt, error) {
	var out []*entity.Receipt
	err := r.sc.do(func(st *state) error {
		for _, rc := range page(newestFirst(st.receipts), limit, offset) {
			out = append(out, cloneReceipt(rc))
		}
		return nil
	})
	return out, err
}
