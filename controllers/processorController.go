package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"shul-backend/database"
	"shul-backend/middlewares"
	"shul-backend/models"
	"shul-backend/utils"
)

type ProcessorConfigDTO struct {
	Processor string `json:"processor" validate:"required,oneof=cardknox stripe"`
	APIKey    string `json:"api_key" validate:"required,min=8"`
	PublicKey string `json:"public_key"`
}

// PUT /api/processor (admin)
func PutProcessorConfig(c *fiber.Ctx) error {
	var in ProcessorConfigDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	_, key := deps()
	if key == nil {
		return fiber.NewError(fiber.StatusInternalServerError, "secret key not configured")
	}
	sealed, err := utils.Seal(key, []byte(strings.TrimSpace(in.APIKey)))
	if err != nil {
		return err
	}

	s, err := tenantStore(c)
	if err != nil {
		return err
	}
	pc := models.ProcessorConfig{
		Processor:    in.Processor,
		APIKeySealed: sealed,
		PublicKey:    strings.TrimSpace(in.PublicKey),
	}
	if err := s.SaveProcessorConfig(c.UserContext(), &pc); err != nil {
		return err
	}
	return c.JSON(pc)
}

// GET /api/processor returns the processor name and public key only.
func GetProcessorConfig(c *fiber.Ctx) error {
	s, err := tenantStore(c)
	if err != nil {
		return err
	}
	pc, err := s.GetProcessorConfig(c.UserContext())
	if errors.Is(err, database.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "no payment processor configured")
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"processor":  pc.Processor,
		"public_key": pc.PublicKey,
		"updated_at": pc.UpdatedAt,
	})
}
