package middlewares

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"shul-backend/billing"
	"shul-backend/database"
	"shul-backend/gateway"
	"shul-backend/services"
)

// statusFor maps domain errors to HTTP status codes. Zero means unknown.
func statusFor(err error) int {
	switch {
	case errors.Is(err, database.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, database.ErrConflict),
		errors.Is(err, database.ErrDuplicate),
		errors.Is(err, database.ErrConstraint),
		errors.Is(err, billing.ErrInvalidTransition),
		errors.Is(err, billing.ErrInvoiceVoid),
		errors.Is(err, billing.ErrInvoicePaid),
		errors.Is(err, billing.ErrInvoiceDraft),
		errors.Is(err, services.ErrNotActive),
		errors.Is(err, services.ErrNothingToBill):
		return fiber.StatusConflict
	case errors.Is(err, billing.ErrNoPayer),
		errors.Is(err, billing.ErrNoCampaign),
		errors.Is(err, billing.ErrEmptyTotal),
		errors.Is(err, billing.ErrNonPositiveAmount),
		errors.Is(err, billing.ErrOverpayment),
		errors.Is(err, database.ErrInvalidReference),
		errors.Is(err, services.ErrNoMethod),
		errors.Is(err, services.ErrMethodNotOwned),
		errors.Is(err, services.ErrNoProcessor),
		errors.Is(err, services.ErrInvalidFrequency),
		errors.Is(err, services.ErrInvalidMethodKind):
		return fiber.StatusUnprocessableEntity
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return fiber.StatusConflict
	}
	return 0
}

// ErrorHandler centralizes error responses and keeps messages sanitized.
func ErrorHandler(c *fiber.Ctx, err error) error {
	// 1) Fiber errors (use their status code + message)
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
	}

	// 2) Validation errors (422 + per-field info)
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		out := make(map[string]string, len(ve))
		for _, fe := range ve {
			out[fe.Field()] = fe.Tag()
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "validation failed",
			"errors":  out,
		})
	}

	// 3) Declined charges carry the processor's reason
	var decline *gateway.DeclineError
	if errors.As(err, &decline) {
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
			"message":   decline.Error(),
			"processor": decline.Processor,
			"code":      decline.Code,
		})
	}

	// 4) Domain errors
	if status := statusFor(err); status != 0 {
		return c.Status(status).JSON(fiber.Map{"message": err.Error()})
	}

	// 5) Unknown errors (500)
	requestLog(c).Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("internal error")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "internal server error",
	})
}
