package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"shul-backend/logger"
)

// RequestLogger tags each request with an id and writes one access log line.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		id := c.Get(fiber.HeaderXRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(fiber.HeaderXRequestID, id)
		c.Locals("requestID", id)

		err := c.Next()
		if err != nil {
			// render through the app's ErrorHandler so the status is final
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		accessLog := logger.WithComponent("http")
		status := c.Response().StatusCode()
		ev := accessLog.Info()
		if status >= fiber.StatusInternalServerError {
			ev = accessLog.Error()
		} else if status >= fiber.StatusBadRequest {
			ev = accessLog.Warn()
		}
		ev.Str("request_id", id).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.IP()).
			Msg("request")
		return nil
	}
}

// requestLog returns a logger scoped to the request's tenant and id.
func requestLog(c *fiber.Ctx) *zerolog.Logger {
	schema, _ := c.Locals("schema").(string)
	userID, _ := c.Locals("userID").(string)
	id, _ := c.Locals("requestID").(string)
	l := logger.WithTenant(schema, userID).With().Str("request_id", id).Logger()
	return &l
}
