package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"shul-backend/billing"
	"shul-backend/database"
	"shul-backend/middlewares"
	"shul-backend/services"
	"shul-backend/utils"
)

type SubscriptionCreateDTO struct {
	PersonID          string          `json:"person_id" validate:"required"`
	CampaignID        string          `json:"campaign_id"`
	PaymentMethodID   string          `json:"payment_method_id" validate:"required"`
	Amount            decimal.Decimal `json:"amount" validate:"gt=0"`
	Frequency         string          `json:"frequency" validate:"required,frequency"`
	InstallmentsTotal int             `json:"installments_total" validate:"gte=0"`
	StartDate         *time.Time      `json:"start_date"`
	EndDate           *time.Time      `json:"end_date"`
}

// POST /api/subscriptions
func CreateSubscription(c *fiber.Ctx) error {
	var in SubscriptionCreateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	b, _, err := billingFor(c)
	if err != nil {
		return err
	}
	sub, err := b.CreateSubscription(c.UserContext(), services.CreateSubscriptionInput{
		PersonID:          in.PersonID,
		CampaignID:        in.CampaignID,
		PaymentMethodID:   in.PaymentMethodID,
		Amount:            utils.Round2(in.Amount),
		Frequency:         billing.Frequency(in.Frequency),
		InstallmentsTotal: in.InstallmentsTotal,
		StartDate:         in.StartDate,
		EndDate:           in.EndDate,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(sub)
}

// GET /api/subscriptions?person_id=&campaign_id=&status=
func GetSubscriptions(c *fiber.Ctx) error {
	s, err := tenantStore(c)
	if err != nil {
		return err
	}
	subs, err := s.ListSubscriptions(c.UserContext(), database.SubscriptionFilter{
		PersonID:   c.Query("person_id"),
		CampaignID: c.Query("campaign_id"),
		Status:     c.Query("status"),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"subscriptions": subs})
}

// GET /api/subscriptions/:id
func GetSubscription(c *fiber.Ctx) error {
	id, err := pathID(c, "subscription")
	if err != nil {
		return err
	}
	s, err := tenantStore(c)
	if err != nil {
		return err
	}
	sub, err := s.GetSubscription(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(sub)
}

// POST /api/subscriptions/:id/cancel
func CancelSubscription(c *fiber.Ctx) error {
	id, err := pathID(c, "subscription")
	if err != nil {
		return err
	}
	b, _, err := billingFor(c)
	if err != nil {
		return err
	}
	sub, err := b.CancelSubscription(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(sub)
}

// POST /api/subscriptions/:id/charge runs a due installment now.
func ChargeSubscription(c *fiber.Ctx) error {
	id, err := pathID(c, "subscription")
	if err != nil {
		return err
	}
	b, s, err := billingFor(c)
	if err != nil {
		return err
	}
	charged, err := b.ChargeSubscription(c.UserContext(), id)
	if err != nil {
		return err
	}
	sub, err := s.GetSubscription(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"charged": charged, "subscription": sub})
}
