package controllers

import (
	"strconv"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"

	"shul-backend/database"
	"shul-backend/gateway"
	"shul-backend/logger"
	"shul-backend/services"
)

var (
	depsMu   sync.RWMutex
	gateways gateway.Provider
	sealKey  *[32]byte
)

// Configure installs the payment gateway resolver and the key used to seal
// processor secrets. Called once at startup.
func Configure(provider gateway.Provider, key *[32]byte) {
	depsMu.Lock()
	defer depsMu.Unlock()
	gateways = provider
	sealKey = key
}

func deps() (gateway.Provider, *[32]byte) {
	depsMu.RLock()
	defer depsMu.RUnlock()
	return gateways, sealKey
}

// tenantStore returns the store bound to the request transaction.
func tenantStore(c *fiber.Ctx) (*database.Store, error) {
	s, err := database.GetTenantStore(c)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}
	return s, nil
}

// billingFor builds the billing service for the request's tenant.
func billingFor(c *fiber.Ctx) (*services.Billing, *database.Store, error) {
	s, err := tenantStore(c)
	if err != nil {
		return nil, nil, err
	}
	provider, _ := deps()
	schema, _ := c.Locals("schema").(string)
	userID, _ := c.Locals("userID").(string)
	b := services.NewBilling(s, provider).WithLogger(logger.WithTenant(schema, userID))
	return b, s, nil
}

func pathID(c *fiber.Ctx, what string) (string, error) {
	id := strings.TrimSpace(c.Params("id"))
	if id == "" {
		return "", fiber.NewError(fiber.StatusBadRequest, "missing "+what+" id in path")
	}
	return id, nil
}

// expectedVersion reads an optional version from ?version= or If-Match.
func expectedVersion(c *fiber.Ctx) (*int, error) {
	raw := strings.TrimSpace(c.Query("version"))
	if raw == "" {
		raw = strings.Trim(strings.TrimSpace(c.Get(fiber.HeaderIfMatch)), `"`)
	}
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid version")
	}
	return &v, nil
}

func idempotencyKey(c *fiber.Ctx, body string) string {
	if k := strings.TrimSpace(body); k != "" {
		return k
	}
	return strings.TrimSpace(c.Get("Idempotency-Key"))
}
