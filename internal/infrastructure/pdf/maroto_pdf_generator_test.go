package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/jhoicas/Billing-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func newTestGenerator() *MarotoPDFGenerator {
	return NewMarotoPDFGenerator(Issuer{Name: "Cobros Demo S.A.S.", TaxID: "900123456-7"}, language.Spanish)
}

func sampleInvoice() *entity.Invoice {
	d := decimal.RequireFromString
	due := time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)
	return &entity.Invoice{
		ID:        "inv-1",
		Number:    "INV-20240315-0001",
		IssueDate: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		DueDate:   &due,
		Items: []entity.InvoiceLineItem{
			{ID: "it-1", Description: "Consultoría", Quantity: d("1"), UnitPrice: d("500"), LineTotal: d("500"), TaxRate: d("0.07"), TaxAmount: d("35")},
			{ID: "it-2", Description: "Licencias", Quantity: d("2"), UnitPrice: d("25.50"), LineTotal: d("51"), TaxRate: d("0.07"), TaxAmount: d("3.57")},
		},
		Subtotal:          d("551.00"),
		TotalTax:          d("38.57"),
		TotalAmount:       d("589.57"),
		OutstandingAmount: d("289.57"),
		Status:            entity.InvoiceStatusPartiallyPaid,
	}
}

func TestGenerateInvoicePDF(t *testing.T) {
	out, err := newTestGenerator().GenerateInvoicePDF(context.Background(), sampleInvoice())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "debe ser un documento PDF")
}

func TestGenerateReceiptPDF(t *testing.T) {
	d := decimal.RequireFromString
	inv := sampleInvoice()
	p := &entity.Payment{ID: "pay-1", InvoiceID: inv.ID, Method: entity.PaymentMethodCash, Amount: d("300"), ReferenceNumber: "PAY-1"}
	rc := &entity.Receipt{
		ID: "rc-1", PaymentID: p.ID, InvoiceID: inv.ID, Number: "RCP-1",
		ReceiptDate: inv.IssueDate, TotalPaid: d("300"), RemainingBalance: d("289.57"),
		PaymentMethod: p.Method, Notes: "abono parcial",
		Items: []entity.ReceiptLineItem{
			{Description: "Consultoría", Quantity: d("1"), UnitPrice: d("500"), LineTotal: d("500"), TaxAmount: d("35"), PaidAmount: d("272.23")},
			{Description: "Licencias", Quantity: d("2"), UnitPrice: d("25.50"), LineTotal: d("51"), TaxAmount: d("3.57"), PaidAmount: d("27.77")},
		},
	}

	out, err := newTestGenerator().GenerateReceiptPDF(context.Background(), rc, inv, p)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestMoney_FormatoDelIdioma(t *testing.T) {
	g := newTestGenerator()
	assert.Contains(t, g.money(decimal.RequireFromString("589.57")), "589,57")

	en := NewMarotoPDFGenerator(Issuer{}, language.English)
	assert.Equal(t, "$ 1,234,567.89", en.money(decimal.RequireFromString("1234567.891")))
}
