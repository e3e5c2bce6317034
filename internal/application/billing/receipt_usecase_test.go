package billing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jhoicas/Billing-api/internal/application/dto"
	"github.com/jhoicas/Billing-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceiptLookups(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	inv := f.createEscenarioA(t)
	res := f.pay(t, inv.ID, "300.00")

	byID, err := f.receipts.GetReceipt(ctx, res.Receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Receipt.ReceiptNumber, byID.ReceiptNumber)

	byNumber, err := f.receipts.GetReceiptByNumber(ctx, res.Receipt.ReceiptNumber)
	require.NoError(t, err)
	assert.Equal(t, res.Receipt.ID, byNumber.ID)

	byPayment, err := f.receipts.GetReceiptByPayment(ctx, res.Payment.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Receipt.ID, byPayment.ID)
	require.Len(t, byPayment.Items, 2)
	assert.Equal(t, "27.77", byPayment.Items[1].PaidAmount.StringFixed(2))

	_, err = f.receipts.GetReceipt(ctx, "nada")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.receipts.GetReceiptByNumber(ctx, "RCP-0")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListReceipts_Paginado(t *testing.T) {
	f := newFixture(t, nil)
	inv := f.createEscenarioA(t)
	f.pay(t, inv.ID, "10.00")
	f.pay(t, inv.ID, "20.00")
	last := f.pay(t, inv.ID, "30.00")

	first, err := f.receipts.ListReceipts(context.Background(), dto.PageRequest{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	assert.Equal(t, last.Receipt.ID, first.Items[0].ID)

	rest, err := f.receipts.ListReceipts(context.Background(), dto.PageRequest{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, rest.Items, 1)
	assert.Equal(t, "10.00", rest.Items[0].TotalPaid.StringFixed(2))
}

// El recibo reemitido muestra el saldo justo después de su pago, no el actual.
func TestReissueMissingReceipts_SaldoAlMomentoDelPago(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	inv := f.createEscenarioA(t)

	f.store.FailReceiptCreate(errors.New("timeout"))
	_, err := f.payments.ProcessPayment(ctx, dto.CreatePaymentRequest{InvoiceID: inv.ID, Amount: d("100.00"), PaymentMethod: "cash"})
	require.ErrorIs(t, err, domain.ErrReceiptPending)
	f.store.FailReceiptCreate(nil)

	f.pay(t, inv.ID, "89.57")

	res, err := f.receipts.ReissueMissingReceipts(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Reissued)

	list, err := f.receipts.ListReceiptsByInvoice(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	reissued := list.Items[0]
	assert.Equal(t, "100.00", reissued.TotalPaid.StringFixed(2))
	assert.Equal(t, "489.57", reissued.RemainingBalance.StringFixed(2))

	// el recibo emitido en línea conserva su propio saldo
	assert.Equal(t, "400.00", list.Items[1].RemainingBalance.StringFixed(2))
}

func TestReissueMissingReceipts_FallaSeReporta(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	inv := f.createEscenarioA(t)

	f.store.FailReceiptCreate(errors.New("timeout"))
	_, err := f.payments.ProcessPayment(ctx, dto.CreatePaymentRequest{
		InvoiceID: inv.ID, Amount: d("10.00"), PaymentMethod: "cash", ReferenceNumber: "REF-PEND",
	})
	require.ErrorIs(t, err, domain.ErrReceiptPending)

	res, err := f.receipts.ReissueMissingReceipts(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Scanned)
	assert.Zero(t, res.Reissued)
	assert.Equal(t, []string{"REF-PEND"}, res.Failed)
}
