package billing_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	appbilling "github.com/jhoicas/Billing-api/internal/application/billing"
	"github.com/jhoicas/Billing-api/internal/application/dto"
	"github.com/jhoicas/Billing-api/internal/domain/billing"
	"github.com/jhoicas/Billing-api/internal/testutil/memstore"
	"github.com/jhoicas/Billing-api/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// seqRefs generador determinista y seguro para goroutines.
type seqRefs struct {
	mu sync.Mutex
	n  int
}

func (g *seqRefs) Generate(prefix string, _ time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-TEST-%04d", prefix, g.n)
}

// scriptedRefs devuelve los valores en orden y luego delega en seqRefs.
type scriptedRefs struct {
	mu     sync.Mutex
	values []string
	next   seqRefs
}

func (g *scriptedRefs) Generate(prefix string, now time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.values) > 0 {
		v := g.values[0]
		g.values = g.values[1:]
		return v
	}
	return g.next.Generate(prefix, now)
}

type fixture struct {
	store    *memstore.Store
	invoices *appbilling.InvoiceUseCase
	payments *appbilling.PaymentUseCase
	receipts *appbilling.ReceiptUseCase
}

func newFixture(t *testing.T, refs billing.ReferenceGenerator) *fixture {
	t.Helper()
	if refs == nil {
		refs = &seqRefs{}
	}
	clock := func() time.Time { return fixedNow }
	store := memstore.New()
	log := logger.NewNop()
	allocator := billing.NewAllocator(refs, clock)
	return &fixture{
		store:    store,
		invoices: appbilling.NewInvoiceUseCase(store, store.Invoices(), refs, billing.DefaultTaxRate, clock),
		payments: appbilling.NewPaymentUseCase(store, store.Payments(), billing.NewPaymentEngine(refs, clock), allocator, log),
		receipts: appbilling.NewReceiptUseCase(store, store.Receipts(), store.Payments(), store.Invoices(), allocator, log),
	}
}

// createEscenarioA crea la factura 1 x 500 + 2 x 25.50 (total 589.57).
func (f *fixture) createEscenarioA(t *testing.T) *dto.InvoiceResponse {
	t.Helper()
	inv, err := f.invoices.CreateInvoice(context.Background(), dto.CreateInvoiceRequest{
		CustomerID:   "cli-1",
		CustomerName: "Cliente Demo",
		Items: []dto.InvoiceItemRequest{
			{Description: "Consultoría", Quantity: d("1"), UnitPrice: d("500")},
			{Description: "Licencias", Quantity: d("2"), UnitPrice: d("25.50")},
		},
	})
	require.NoError(t, err)
	return inv
}

func (f *fixture) pay(t *testing.T, invoiceID, amount string) *dto.ProcessPaymentResponse {
	t.Helper()
	res, err := f.payments.ProcessPayment(context.Background(), dto.CreatePaymentRequest{
		InvoiceID:     invoiceID,
		Amount:        d(amount),
		PaymentMethod: "cash",
	})
	require.NoError(t, err)
	return res
}

func decimalRate(s string) decimal.NullDecimal { return decimal.NewNullDecimal(d(s)) }
