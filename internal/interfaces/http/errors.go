package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	appbilling "github.com/jhoicas/Billing-api/internal/application/billing"
	"github.com/jhoicas/Billing-api/internal/application/dto"
	"github.com/jhoicas/Billing-api/internal/domain"
)

// errorStatus traduce un error de aplicación a status HTTP y cuerpo.
func errorStatus(err error) (int, any) {
	var pending *appbilling.ReceiptPendingError
	if errors.As(err, &pending) {
		return fiber.StatusAccepted, dto.ReceiptPendingResponse{
			Code:            "RECEIPT_PENDING",
			Message:         "pago registrado; el recibo se emitirá en la próxima conciliación",
			PaymentID:       pending.PaymentID,
			ReferenceNumber: pending.ReferenceNumber,
		}
	}

	var verr *domain.ValidationError
	switch {
	case errors.Is(err, errInvalidBody):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"}
	case errors.As(err, &verr):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: verr.Error()}
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"}
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"}
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "EMAIL_EXISTS", Message: "el email ya está registrado"}
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()}
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()}
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "credenciales inválidas"}
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado"}
	}
	return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"}
}

// writeError responde el error mapeado; los 500 quedan en el log de la petición.
func writeError(c *fiber.Ctx, err error) error {
	status, body := errorStatus(err)
	if status >= fiber.StatusInternalServerError {
		requestLog(c).Error().Err(err).Str("path", c.Path()).Msg("error no controlado")
	} else if status == fiber.StatusAccepted {
		requestLog(c).Warn().Err(err).Msg("pago sin recibo")
	}
	return c.Status(status).JSON(body)
}

// errInvalidBody el cuerpo no es JSON válido para el DTO.
var errInvalidBody = errors.New("cuerpo inválido")
