package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Billing-api/internal/application/billing"
	"github.com/jhoicas/Billing-api/internal/application/dto"
)

// ReceiptHandler consulta de recibos, PDF y conciliación.
type ReceiptHandler struct {
	uc  *billing.ReceiptUseCase
	pdf *billing.PDFUseCase
}

// NewReceiptHandler construye el handler.
func NewReceiptHandler(uc *billing.ReceiptUseCase, pdf *billing.PDFUseCase) *ReceiptHandler {
	return &ReceiptHandler{uc: uc, pdf: pdf}
}

// List godoc
// @Summary      Listar recibos
// @Tags         receipts
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query  int  false  "máximo 100"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {object}  dto.ListResponse[dto.ReceiptResponse]
// @Router       /api/receipts [get]
func (h *ReceiptHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := parseQuery(c, &page); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.ListReceipts(c.UserContext(), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Detalle de recibo
// @Tags         receipts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del recibo"
// @Success      200  {object}  dto.ReceiptResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/receipts/{id} [get]
func (h *ReceiptHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetReceipt(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByPayment godoc
// @Summary      Recibo de un pago
// @Tags         receipts
// @Produce      json
// @Security     BearerAuth
// @Param        paymentId  path  string  true  "ID del pago"
// @Success      200  {object}  dto.ReceiptResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/receipts/payment/{paymentId} [get]
func (h *ReceiptHandler) GetByPayment(c *fiber.Ctx) error {
	out, err := h.uc.GetReceiptByPayment(c.UserContext(), c.Params("paymentId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByNumber godoc
// @Summary      Recibo por número
// @Tags         receipts
// @Produce      json
// @Security     BearerAuth
// @Param        number  path  string  true  "número de recibo"
// @Success      200  {object}  dto.ReceiptResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/receipts/number/{number} [get]
func (h *ReceiptHandler) GetByNumber(c *fiber.Ctx) error {
	out, err := h.uc.GetReceiptByNumber(c.UserContext(), c.Params("number"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListByInvoice godoc
// @Summary      Recibos de una factura
// @Tags         receipts
// @Produce      json
// @Security     BearerAuth
// @Param        invoiceId  path  string  true  "ID de la factura"
// @Success      200  {object}  dto.ListResponse[dto.ReceiptResponse]
// @Router       /api/receipts/invoice/{invoiceId} [get]
func (h *ReceiptHandler) ListByInvoice(c *fiber.Ctx) error {
	out, err := h.uc.ListReceiptsByInvoice(c.UserContext(), c.Params("invoiceId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetPDF godoc
// @Summary      Descargar PDF del recibo
// @Tags         receipts
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del recibo"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/receipts/{id}/pdf [get]
func (h *ReceiptHandler) GetPDF(c *fiber.Ctx) error {
	pdfBytes, filename, err := h.pdf.DownloadReceiptPDF(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return sendPDF(c, pdfBytes, filename)
}

// Reconcile godoc
// @Summary      Reemitir recibos faltantes
// @Description  Emite el recibo de los pagos confirmados que quedaron sin él.
// @Tags         receipts
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query  int  false  "pagos a revisar (máximo 100)"
// @Success      200  {object}  dto.ReconcileResponse
// @Router       /api/receipts/reconcile [post]
func (h *ReceiptHandler) Reconcile(c *fiber.Ctx) error {
	out, err := h.uc.ReissueMissingReceipts(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
