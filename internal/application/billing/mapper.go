package billing

import (
	"github.com/jhoicas/Billing-api/internal/application/dto"
	"github.com/jhoicas/Billing-api/internal/domain/entity"
	"github.com/jhoicas/Billing-api/internal/domain/repository"
	"github.com/samber/lo"
)

func toInvoiceResponse(inv *entity.Invoice) *dto.InvoiceResponse {
	return &dto.InvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.Number,
		IssueDate:     inv.IssueDate,
		DueDate:       inv.DueDate,
		CustomerID:    inv.CustomerID,
		CustomerName:  inv.CustomerName,
		CustomerEmail: inv.CustomerEmail,
		Items: lo.Map(inv.Items, func(it entity.InvoiceLineItem, _ int) dto.InvoiceItemResponse {
			return dto.InvoiceItemResponse{
				ID:          it.ID,
				Description: it.Description,
				Quantity:    it.Quantity,
				UnitPrice:   it.UnitPrice,
				LineTotal:   it.LineTotal,
				TaxRate:     it.TaxRate,
				TaxAmount:   it.TaxAmount,
			}
		}),
		Subtotal:          inv.Subtotal,
		TotalTax:          inv.TotalTax,
		TotalAmount:       inv.TotalAmount,
		OutstandingAmount: inv.OutstandingAmount,
		TotalPaid:         inv.TotalPaid(),
		Status:            string(inv.Status),
		Notes:             inv.Notes,
		CreatedAt:         inv.CreatedAt,
		UpdatedAt:         inv.UpdatedAt,
	}
}

func toPaymentResponse(p *entity.Payment) *dto.PaymentResponse {
	return &dto.PaymentResponse{
		ID:              p.ID,
		InvoiceID:       p.InvoiceID,
		PaymentMethod:   string(p.Method),
		Amount:          p.Amount,
		PaymentDate:     p.PaymentDate,
		ReferenceNumber: p.ReferenceNumber,
		Status:          string(p.Status),
		Notes:           p.Notes,
		CreatedAt:       p.CreatedAt,
	}
}

func toReceiptResponse(r *entity.Receipt) *dto.ReceiptResponse {
	return &dto.ReceiptResponse{
		ID:               r.ID,
		ReceiptNumber:    r.Number,
		PaymentID:        r.PaymentID,
		InvoiceID:        r.InvoiceID,
		ReceiptDate:      r.ReceiptDate,
		TotalPaid:        r.TotalPaid,
		RemainingBalance: r.RemainingBalance,
		PaymentMethod:    string(r.PaymentMethod),
		Notes:            r.Notes,
		Items: lo.Map(r.Items, func(it entity.ReceiptLineItem, _ int) dto.ReceiptItemResponse {
			return dto.ReceiptItemResponse{
				ID:            it.ID,
				InvoiceItemID: it.InvoiceItemID,
				Description:   it.Description,
				Quantity:      it.Quantity,
				UnitPrice:     it.UnitPrice,
				LineTotal:     it.LineTotal,
				TaxAmount:     it.TaxAmount,
				PaidAmount:    it.PaidAmount,
			}
		}),
		CreatedAt: r.CreatedAt,
	}
}

func toInvoiceList(list []*entity.Invoice, limit, offset int) *dto.ListResponse[dto.InvoiceResponse] {
	return &dto.ListResponse[dto.InvoiceResponse]{
		Items: lo.Map(list, func(inv *entity.Invoice, _ int) dto.InvoiceResponse { return *toInvoiceResponse(inv) }),
		Page:  dto.PageResponse{Limit: limit, Offset: offset, Total: len(list)},
	}
}

func toPaymentList(list []*entity.Payment, limit, offset int) *dto.ListResponse[dto.PaymentResponse] {
	return &dto.ListResponse[dto.PaymentResponse]{
		Items: lo.Map(list, func(p *entity.Payment, _ int) dto.PaymentResponse { return *toPaymentResponse(p) }),
		Page:  dto.PageResponse{Limit: limit, Offset: offset, Total: len(list)},
	}
}

func toReceiptList(list []*entity.Receipt, limit, offset int) *dto.ListResponse[dto.ReceiptResponse] {
	return &dto.ListResponse[dto.ReceiptResponse]{
		Items: lo.Map(list, func(r *entity.Receipt, _ int) dto.ReceiptResponse { return *toReceiptResponse(r) }),
		Page:  dto.PageResponse{Limit: limit, Offset: offset, Total: len(list)},
	}
}

func toInvoiceStats(s *repository.InvoiceStats) *dto.InvoiceStatisticsResponse {
	return &dto.InvoiceStatisticsResponse{
		Total:            s.Total,
		Draft:            s.Draft,
		Pending:          s.Pending,
		PartiallyPaid:    s.PartiallyPaid,
		Paid:             s.Paid,
		Cancelled:        s.Cancelled,
		Overdue:          s.Overdue,
		TotalAmount:      s.TotalAmount,
		TotalOutstanding: s.TotalOutstanding,
	}
}

// normalizePage aplica el límite por defecto/máximo y offset no negativo.
func normalizePage(limit, offset int) (int, int) {
	p := dto.PageRequest{Limit: limit, Offset: offset}
	p.DefaultPage()
	return p.Limit, p.Offset
}
