package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Billing-api/internal/application/billing"
	"github.com/jhoicas/Billing-api/internal/application/dto"
)

// InvoiceHandler maneja las peticiones HTTP de facturas (protegido).
type InvoiceHandler struct {
	uc  *billing.InvoiceUseCase
	pdf *billing.PDFUseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(uc *billing.InvoiceUseCase, pdf *billing.PDFUseCase) *InvoiceHandler {
	return &InvoiceHandler{uc: uc, pdf: pdf}
}

// Create godoc
// @Summary      Crear factura
// @Description  Calcula subtotal, impuestos y total; número generado si no se envía.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateInvoiceRequest  true  "cabecera y líneas"
// @Success      201   {object}  dto.InvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/invoices [post]
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	invoice, err := h.uc.CreateInvoice(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(invoice)
}

// List godoc
// @Summary      Listar facturas
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        status       query  string  false  "estado"
// @Param        customer_id  query  string  false  "cliente"
// @Param        limit        query  int     false  "máximo 100"
// @Param        offset       query  int     false  "desplazamiento"
// @Success      200  {object}  dto.ListResponse[dto.InvoiceResponse]
// @Router       /api/invoices [get]
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	var q dto.InvoiceListQuery
	if err := parseQuery(c, &q); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.ListInvoices(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Detalle de factura
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	invoice, err := h.uc.GetInvoice(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(invoice)
}

// GetByNumber godoc
// @Summary      Factura por número
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        number  path  string  true  "número de factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/number/{number} [get]
func (h *InvoiceHandler) GetByNumber(c *fiber.Ctx) error {
	invoice, err := h.uc.GetInvoiceByNumber(c.UserContext(), c.Params("number"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(invoice)
}

// Update godoc
// @Summary      Actualizar cabecera de factura
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                    true  "ID de la factura"
// @Param        body  body  dto.UpdateInvoiceRequest  true  "campos a cambiar"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id} [put]
func (h *InvoiceHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateInvoiceRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	invoice, err := h.uc.UpdateInvoice(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(invoice)
}

// Delete godoc
// @Summary      Eliminar factura sin pagos
// @Tags         invoices
// @Security     BearerAuth
// @Param        id   path  string  true  "ID de la factura"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.DeleteInvoice(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Statistics godoc
// @Summary      Estadísticas de facturación
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.InvoiceStatisticsResponse
// @Router       /api/invoices/statistics [get]
func (h *InvoiceHandler) Statistics(c *fiber.Ctx) error {
	out, err := h.uc.Statistics(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// MarkOverdue godoc
// @Summary      Marcar facturas vencidas
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.MarkOverdueResponse
// @Router       /api/invoices/mark-overdue [post]
func (h *InvoiceHandler) MarkOverdue(c *fiber.Ctx) error {
	out, err := h.uc.MarkOverdue(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetPDF godoc
// @Summary      Descargar PDF de la factura
// @Tags         invoices
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/pdf [get]
func (h *InvoiceHandler) GetPDF(c *fiber.Ctx) error {
	pdfBytes, filename, err := h.pdf.DownloadInvoicePDF(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return sendPDF(c, pdfBytes, filename)
}

func sendPDF(c *fiber.Ctx, pdfBytes []byte, filename string) error {
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}
