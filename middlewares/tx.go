package middlewares

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"shul-backend/database"
)

// TenantTx wraps the rest of the chain in one transaction pinned to the
// caller's shul schema. Mount it after IsAuthenticatedHeader and Idempotency
// so the idempotency record outlives a rolled back handler.
func TenantTx() fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		schema, _ := c.Locals("schema").(string)
		if strings.TrimSpace(schema) == "" {
			return c.Next()
		}

		tx, berr := database.BeginTenant(c.UserContext(), schema)
		if berr != nil {
			requestLog(c).Error().Err(berr).Msg("begin tenant transaction")
			return fiber.NewError(fiber.StatusInternalServerError, "failed to begin transaction")
		}
		c.Locals("tx", tx)

		defer func() {
			if r := recover(); r != nil {
				_ = tx.Rollback()
				panic(r)
			}
			err = finishTx(c, tx, err)
		}()
		return c.Next()
	}
}

// finishTx commits only when the handler returned nil with a non-error
// status. A 4xx written by the handler itself (c.Status(...).JSON) counts as
// a failure too.
func finishTx(c *fiber.Ctx, tx *gorm.DB, handlerErr error) error {
	if handlerErr != nil || c.Response().StatusCode() >= fiber.StatusBadRequest {
		if rerr := tx.Rollback().Error; rerr != nil {
			requestLog(c).Warn().Err(rerr).Msg("tenant rollback")
		}
		return handlerErr
	}
	if cerr := tx.Commit().Error; cerr != nil {
		requestLog(c).Error().Err(cerr).Msg("tenant commit")
		return fiber.NewError(fiber.StatusInternalServerError, "transaction commit failed")
	}
	return nil
}
