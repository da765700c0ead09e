package middlewares

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"shul-backend/database"
	"shul-backend/models"
)

const idempotencyHeader = "Idempotency-Key"

// Idempotency processes Idempotency-Key for mutating HTTP methods. It uses its
// own short tenant transactions so the stored key is not tied to the handler TX.
// Run after IsAuthenticatedHeader and before TenantTx.
func Idempotency() fiber.Handler {
	return func(c *fiber.Ctx) error {
		method := strings.ToUpper(c.Method())
		if method != fiber.MethodPost && method != fiber.MethodPut && method != fiber.MethodPatch && method != fiber.MethodDelete {
			return c.Next()
		}

		key := strings.TrimSpace(c.Get(idempotencyHeader))
		if key == "" {
			return c.Next()
		}
		if len(key) > 128 {
			return fiber.NewError(fiber.StatusBadRequest, "Idempotency-Key too long")
		}

		schema, _ := c.Locals("schema").(string)
		userID, _ := c.Locals("userID").(string)
		if schema == "" || userID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "auth context missing")
		}

		path := c.OriginalURL()
		rec := &models.IdempotencyKey{
			Key:         key,
			RequestHash: requestHash(method, path, c.Body(), schema, userID),
			Method:      method,
			Path:        path,
			UserID:      userID,
		}

		ctx := c.UserContext()
		var existing *models.IdempotencyKey
		var created bool
		err := database.InTenant(ctx, schema, func(s *database.Store) error {
			var err error
			existing, created, err = s.ClaimIdempotencyKey(ctx, rec)
			return err
		})
		switch {
		case errors.Is(err, database.ErrKeyReused):
			return fiber.NewError(fiber.StatusConflict, "Idempotency-Key reuse with different request")
		case err != nil:
			return err
		}
		if !created {
			if !existing.Pending() {
				c.Set("Idempotent-Replayed", "true")
				c.Status(existing.ResponseStatus).Response().Header.SetContentType(fiber.MIMEApplicationJSONCharsetUTF8)
				return c.Send(existing.ResponseBody)
			}
			return fiber.NewError(fiber.StatusConflict, "request with this Idempotency-Key is still in progress")
		}

		if err := c.Next(); err != nil {
			releaseKey(c, schema, key)
			return err
		}
		status := c.Response().StatusCode()
		if status >= fiber.StatusInternalServerError {
			releaseKey(c, schema, key)
			return nil
		}

		body := c.Response().Body()
		if err := database.InTenant(ctx, schema, func(s *database.Store) error {
			return s.CompleteIdempotencyKey(ctx, key, status, body, time.Now().UTC())
		}); err != nil {
			// the response already succeeded; a retry will see a pending key
			requestLog(c).Warn().Err(err).Str("idempotency_key", key).Msg("could not store idempotent response")
		}
		return nil
	}
}

func releaseKey(c *fiber.Ctx, schema, key string) {
	ctx := c.UserContext()
	if err := database.InTenant(ctx, schema, func(s *database.Store) error {
		return s.ReleaseIdempotencyKey(ctx, key)
	}); err != nil {
		requestLog(c).Warn().Err(err).Str("idempotency_key", key).Msg("could not release idempotency key")
	}
}

// requestHash is sha256 of method|path|body|schema|user.
func requestHash(method, path string, body []byte, schema, userID string) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{'\n'})
	h.Write([]byte(path))
	h.Write([]byte{'\n'})
	h.Write(body)
	h.Write([]byte{'\n'})
	h.Write([]byte(schema))
	h.Write([]byte{'\n'})
	h.Write([]byte(userID))
	return hex.EncodeToString(h.Sum(nil))
}
