package billing

import (
	"context"

	"github.com/jhoicas/Billing-api/internal/domain/entity"
	"github.com/jhoicas/Billing-api/internal/domain/repository"
)

// BillingTxRunner ejecuta una función dentro de una transacción con los repos de facturación.
// Si fn retorna error se hace rollback.
type BillingTxRunner interface {
	RunBilling(ctx context.Context, fn func(
		invoiceRepo repository.InvoiceRepository,
		paymentRepo repository.PaymentRepository,
		receiptRepo repository.ReceiptRepository,
	) error) error
}

// DocumentPDFGenerator genera la representación impresa de facturas y recibos.
type DocumentPDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, invoice *entity.Invoice) ([]byte, error)
	GenerateReceiptPDF(ctx context.Context, receipt *entity.Receipt, invoice *entity.Invoice, payment *entity.Payment) ([]byte, error)
}
