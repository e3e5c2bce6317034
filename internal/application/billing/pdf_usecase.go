package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/Billing-api/internal/domain"
	"github.com/jhoicas/Billing-api/internal/domain/repository"
)

// PDFUseCase genera la representación impresa (PDF) de facturas y recibos.
type PDFUseCase struct {
	invoiceRepo repository.InvoiceRepository
	paymentRepo repository.PaymentRepository
	receiptRepo repository.ReceiptRepository
	generator   DocumentPDFGenerator
}

// NewPDFUseCase construye el caso de uso inyectando todas sus dependencias.
func NewPDFUseCase(
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
	receiptRepo repository.ReceiptRepository,
	generator DocumentPDFGenerator,
) *PDFUseCase {
	return &PDFUseCase{
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		receiptRepo: receiptRepo,
		generator:   generator,
	}
}

// DownloadInvoicePDF genera el PDF de una factura.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si la factura no existe.
func (uc *PDFUseCase) DownloadInvoicePDF(ctx context.Context, invoiceID string) (pdfBytes []byte, filename string, err error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener factura: %w", err)
	}
	if inv == nil {
		return nil, "", domain.ErrNotFound
	}

	pdfBytes, err = uc.generator.GenerateInvoicePDF(ctx, inv)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("factura_%s.pdf", inv.Number), nil
}

// DownloadReceiptPDF genera el PDF de un recibo con los datos del pago y la factura.
func (uc *PDFUseCase) DownloadReceiptPDF(ctx context.Context, receiptID string) (pdfBytes []byte, filename string, err error) {
	// ── 1. Recibo ─────────────────────────────────────────────────────────────
	receipt, err := uc.receiptRepo.GetByID(ctx, receiptID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener recibo: %w", err)
	}
	if receipt == nil {
		return nil, "", domain.ErrNotFound
	}

	// ── 2. Factura y pago ─────────────────────────────────────────────────────
	inv, err := uc.invoiceRepo.GetByID(ctx, receipt.InvoiceID)
	if err != nil || inv == nil {
		return nil, "", fmt.Errorf("pdf: obtener factura del recibo: %w", nonNil(err, domain.ErrNotFound))
	}
	payment, err := uc.paymentRepo.GetByID(ctx, receipt.PaymentID)
	if err != nil || payment == nil {
		return nil, "", fmt.Errorf("pdf: obtener pago del recibo: %w", nonNil(err, domain.ErrNotFound))
	}

	// ── 3. Generar PDF ────────────────────────────────────────────────────────
	pdfBytes, err = uc.generator.GenerateReceiptPDF(ctx, receipt, inv, payment)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("recibo_%s.pdf", receipt.Number), nil
}

func nonNil(err, fallback error) error {
	if err != nil {
		return err
	}
	return fallback
}
