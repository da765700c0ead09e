package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"shul-backend/middlewares"
	"shul-backend/models"
	"shul-backend/utils"
)

type CampaignCreateDTO struct {
	Name        string          `json:"name" validate:"required,min=1"`
	Description string          `json:"description" validate:"omitempty"`
	Goal        decimal.Decimal `json:"goal" validate:"gte=0"`
	StartsAt    *time.Time      `json:"starts_at"`
	EndsAt      *time.Time      `json:"ends_at"`
}

type CampaignUpdateDTO struct {
	Name        *string          `json:"name" validate:"omitempty,min=1"`
	Description *string          `json:"description"`
	Goal        *decimal.Decimal `json:"goal"`
	StartsAt    *time.Time       `json:"starts_at"`
	EndsAt      *time.Time       `json:"ends_at"`
	Active      *bool            `json:"active"`
}

// campaignView adds the amount raised so far.
type campaignView struct {
	models.Campaign
	Raised decimal.Decimal `json:"raised"`
}

// POST /api/campaigns
func CreateCampaign(c *fiber.Ctx) error {
	var in CampaignCreateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizeDTO(&in)
	if in.StartsAt != nil && in.EndsAt != nil && in.EndsAt.Before(*in.StartsAt) {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "ends_at is before starts_at")
	}

	s, err := tenantStore(c)
	if err != nil {
		return err
	}
	campaign := models.Campaign{
		Name:        in.Name,
		Description: in.Description,
		Goal:        in.Goal,
		StartsAt:    in.StartsAt,
		EndsAt:      in.EndsAt,
		Active:      true,
	}
	if err := s.CreateCampaign(c.UserContext(), &campaign); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(campaignView{Campaign: campaign})
}

// GET /api/campaigns?active=true
func GetCampaigns(c *fiber.Ctx) error {
	s, err := tenantStore(c)
	if err != nil {
		return err
	}
	campaigns, err := s.ListCampaigns(c.UserContext(), c.QueryBool("active", false))
	if err != nil {
		return err
	}
	out := make([]campaignView, len(campaigns))
	for i := range campaigns {
		raised, err := s.CampaignRaised(c.UserContext(), campaigns[i].ID)
		if err != nil {
			return err
		}
		out[i] = campaignView{Campaign: campaigns[i], Raised: raised}
	}
	return c.JSON(fiber.Map{"campaigns": out})
}

// GET /api/campaigns/:id
func GetCampaign(c *fiber.Ctx) error {
	id, err := pathID(c, "campaign")
	if err != nil {
		return err
	}
	s, err := tenantStore(c)
	if err != nil {
		return err
	}
	campaign, err := s.GetCampaign(c.UserContext(), id)
	if err != nil {
		return err
	}
	raised, err := s.CampaignRaised(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(campaignView{Campaign: *campaign, Raised: raised})
}

// PATCH /api/campaigns/:id
func UpdateCampaign(c *fiber.Ctx) error {
	id, err := pathID(c, "campaign")
	if err != nil {
		return err
	}
	var in CampaignUpdateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&in)
	if in.Goal != nil && in.Goal.IsNegative() {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "goal must not be negative")
	}

	s, err := tenantStore(c)
	if err != nil {
		return err
	}
	campaign, err := s.UpdateCampaign(c.UserContext(), id, utils.UpdatesFromPtrDTO(&in, nil))
	if err != nil {
		return err
	}
	return c.JSON(campaignView{Campaign: *campaign})
}
