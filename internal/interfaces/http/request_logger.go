package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Billing-api/pkg/logger"
)

const localLogger = "logger"

// RequestLogger registra cada petición (método, ruta, status, latencia, request id) y deja
// en c.Locals un sublogger con el request id para los handlers.
// Va después de requestid.New().
func RequestLogger(log *logger.Logger) fiber.Handler {
	httpLog := log.Component("http")
	return func(c *fiber.Ctx) error {
		start := time.Now()
		rid, _ := c.Locals("requestid").(string)
		reqLog := httpLog.WithStr("request_id", rid)
		c.Locals(localLogger, reqLog)

		err := c.Next()
		if err != nil {
			// deja que el ErrorHandler de Fiber escriba la respuesta antes de loguear el status
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		ev := reqLog.Info()
		switch {
		case status >= fiber.StatusInternalServerError:
			ev = reqLog.Error()
		case status >= fiber.StatusBadRequest:
			ev = reqLog.Warn()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("user_id", GetUserID(c)).
			Msg("petición")
		return nil
	}
}

func requestLog(c *fiber.Ctx) *logger.Logger {
	if l, ok := c.Locals(localLogger).(*logger.Logger); ok {
		return l
	}
	return logger.NewNop()
}
