package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appbilling "github.com/jhoicas/Billing-api/internal/application/billing"
	"github.com/jhoicas/Billing-api/internal/domain/billing"
	"github.com/jhoicas/Billing-api/internal/testutil/memstore"
	"github.com/jhoicas/Billing-api/pkg/logger"
)

func TestSeedDemo_CreaLosCuatroCasosYEsRepetible(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	refs := billing.NewRandomReferenceGenerator()
	invoices := appbilling.NewInvoiceUseCase(store, store.Invoices(), refs, billing.DefaultTaxRate, time.Now)
	payments := appbilling.NewPaymentUseCase(store, store.Payments(), billing.NewPaymentEngine(refs, time.Now),
		billing.NewAllocator(refs, time.Now), logger.NewNop())

	var out bytes.Buffer
	require.NoError(t, seedDemo(ctx, invoices, payments, &out))

	want := map[string]struct{ status, outstanding string }{
		"DEMO-0001": {"paid", "0.00"},
		"DEMO-0002": {"partially_paid", "642.00"},
		"DEMO-0003": {"paid", "0.00"},
		"DEMO-0004": {"pending", "322.07"},
	}
	for number, w := range want {
		inv, err := invoices.GetInvoiceByNumber(ctx, number)
		require.NoError(t, err, number)
		assert.Equal(t, w.status, inv.Status, number)
		assert.Equal(t, w.outstanding, inv.OutstandingAmount.StringFixed(2), number)
	}
	assert.Contains(t, out.String(), "sobrepago de 250.00")

	out.Reset()
	require.NoError(t, seedDemo(ctx, invoices, payments, &out))
	assert.Contains(t, out.String(), "DEMO-0001 ya existe")

	stats, err := payments.Statistics(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total, "la segunda ejecución no cobra de nuevo")
}
