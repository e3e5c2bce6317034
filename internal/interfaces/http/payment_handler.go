package http

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Billing-api/internal/application/billing"
	"github.com/jhoicas/Billing-api/internal/application/dto"
	"github.com/jhoicas/Billing-api/internal/infrastructure/cache"
)

// HeaderIdempotencyKey clave opcional para repetir POST /api/payments sin duplicar el cobro.
const HeaderIdempotencyKey = "Idempotency-Key"

// PaymentHandler maneja registro y consulta de pagos.
type PaymentHandler struct {
	uc   *billing.PaymentUseCase
	idem *cache.IdempotencyStore
}

// NewPaymentHandler construye el handler. idem nil desactiva Idempotency-Key.
func NewPaymentHandler(uc *billing.PaymentUseCase, idem *cache.IdempotencyStore) *PaymentHandler {
	return &PaymentHandler{uc: uc, idem: idem}
}

// Create godoc
// @Summary      Registrar pago
// @Description  Aplica el pago a la factura y emite el recibo. Con Idempotency-Key un reintento
// @Description  devuelve la respuesta original; la misma clave con otro cuerpo da 422. 202 si el pago quedó registrado sin recibo.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header  string                    false  "clave de idempotencia"
// @Param        body             body    dto.CreatePaymentRequest  true   "pago"
// @Success      201  {object}  dto.ProcessPaymentResponse
// @Success      202  {object}  dto.ReceiptPendingResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/payments [post]
func (h *PaymentHandler) Create(c *fiber.Ctx) error {
	key := strings.TrimSpace(c.Get(HeaderIdempotencyKey))
	if key == "" || h.idem == nil {
		return h.process(c, "", "")
	}
	// la clave se aísla por usuario
	key = GetUserID(c) + ":" + key
	fingerprint := cache.Fingerprint(c.Body())
	stored, err := h.idem.Begin(key, fingerprint)
	if errors.Is(err, cache.ErrKeyReused) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Code:    "IDEMPOTENCY_KEY_REUSED",
			Message: "la Idempotency-Key ya se usó con otra petición",
		})
	}
	if errors.Is(err, cache.ErrInProgress) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "IDEMPOTENCY_IN_PROGRESS",
			Message: "hay una petición en curso con la misma Idempotency-Key",
		})
	}
	if stored != nil {
		c.Set("Idempotent-Replayed", "true")
		c.Set(fiber.HeaderContentType, stored.ContentType)
		return c.Status(stored.Status).Send(stored.Body)
	}
	return h.process(c, key, fingerprint)
}

func (h *PaymentHandler) process(c *fiber.Ctx, key, fingerprint string) error {
	var in dto.CreatePaymentRequest
	if err := parseBody(c, &in); err != nil {
		h.release(key)
		return writeError(c, err)
	}

	res, err := h.uc.ProcessPayment(c.UserContext(), in)
	var (
		status int
		body   any
	)
	if err != nil {
		status, body = errorStatus(err)
		if status != fiber.StatusAccepted {
			h.release(key)
			return writeError(c, err)
		}
		requestLog(c).Warn().Err(err).Msg("pago sin recibo")
	} else {
		status, body = fiber.StatusCreated, res
	}

	raw, err := json.Marshal(body)
	if err != nil {
		h.release(key)
		return writeError(c, err)
	}
	// El pago ya está confirmado (201 o 202): un reintento con la misma clave recibe esta respuesta.
	if key != "" {
		h.idem.Complete(key, fingerprint, cache.StoredResponse{Status: status, ContentType: fiber.MIMEApplicationJSON, Body: raw})
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(status).Send(raw)
}

func (h *PaymentHandler) release(key string) {
	if key != "" {
		h.idem.Release(key)
	}
}

// List godoc
// @Summary      Listar pagos
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        status          query  string  false  "estado"
// @Param        payment_method  query  string  false  "medio de pago"
// @Param        limit           query  int     false  "máximo 100"
// @Param        offset          query  int     false  "desplazamiento"
// @Success      200  {object}  dto.ListResponse[dto.PaymentResponse]
// @Router       /api/payments [get]
func (h *PaymentHandler) List(c *fiber.Ctx) error {
	var q dto.PaymentListQuery
	if err := parseQuery(c, &q); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.ListPayments(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Detalle de pago
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del pago"
// @Success      200  {object}  dto.PaymentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/payments/{id} [get]
func (h *PaymentHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetPayment(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByReference godoc
// @Summary      Pago por referencia
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        reference  path  string  true  "número de referencia"
// @Success      200  {object}  dto.PaymentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/payments/reference/{reference} [get]
func (h *PaymentHandler) GetByReference(c *fiber.Ctx) error {
	out, err := h.uc.GetPaymentByReference(c.UserContext(), c.Params("reference"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListByInvoice godoc
// @Summary      Pagos de una factura
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        invoiceId  path  string  true  "ID de la factura"
// @Success      200  {object}  dto.ListResponse[dto.PaymentResponse]
// @Router       /api/payments/invoice/{invoiceId} [get]
func (h *PaymentHandler) ListByInvoice(c *fiber.Ctx) error {
	out, err := h.uc.ListPaymentsByInvoice(c.UserContext(), c.Params("invoiceId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Statistics godoc
// @Summary      Estadísticas de pagos
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        invoice_id  query  string  false  "limitar a una factura"
// @Success      200  {object}  dto.PaymentStatisticsResponse
// @Router       /api/payments/statistics [get]
func (h *PaymentHandler) Statistics(c *fiber.Ctx) error {
	out, err := h.uc.Statistics(c.UserContext(), c.Query("invoice_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
