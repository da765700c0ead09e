package controllers

import (
	"github.com/gofiber/fiber/v2"

	"shul-backend/middlewares"
	"shul-backend/services"
)

type PaymentMethodCreateDTO struct {
	Token       string `json:"token" validate:"required"` // hosted fields / Stripe.js token
	Kind        string `json:"kind" validate:"omitempty,oneof=card ach"`
	ExpMonth    int    `json:"exp_month" validate:"omitempty,min=1,max=12"`
	ExpYear     int    `json:"exp_year" validate:"omitempty,min=2000,max=2100"`
	MakeDefault bool   `json:"make_default"`
}

// POST /api/people/:id/payment-methods
func AddPaymentMethod(c *fiber.Ctx) error {
	personID, err := pathID(c, "person")
	if err != nil {
		return err
	}
	var in PaymentMethodCreateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	b, _, err := billingFor(c)
	if err != nil {
		return err
	}
	m, err := b.AddPaymentMethod(c.UserContext(), services.AddMethodInput{
		PersonID:    personID,
		Token:       in.Token,
		Kind:        in.Kind,
		ExpMonth:    in.ExpMonth,
		ExpYear:     in.ExpYear,
		MakeDefault: in.MakeDefault,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(m)
}

// GET /api/people/:id/payment-methods
func GetPaymentMethods(c *fiber.Ctx) error {
	personID, err := pathID(c, "person")
	if err != nil {
		return err
	}
	s, err := tenantStore(c)
	if err != nil {
		return err
	}
	if _, err := s.GetPerson(c.UserContext(), personID); err != nil {
		return err
	}
	methods, err := s.ListPaymentMethods(c.UserContext(), personID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"payment_methods": methods})
}

// PUT /api/people/:id/payment-methods/:methodId/default
func SetDefaultPaymentMethod(c *fiber.Ctx) error {
	personID, err := pathID(c, "person")
	if err != nil {
		return err
	}
	b, s, err := billingFor(c)
	if err != nil {
		return err
	}
	methodID := c.Params("methodId")
	if err := b.SetDefaultPaymentMethod(c.UserContext(), personID, methodID); err != nil {
		return err
	}
	methods, err := s.ListPaymentMethods(c.UserContext(), personID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"payment_methods": methods})
}

// DELETE /api/people/:id/payment-methods/:methodId
func DeletePaymentMethod(c *fiber.Ctx) error {
	personID, err := pathID(c, "person")
	if err != nil {
		return err
	}
	s, err := tenantStore(c)
	if err != nil {
		return err
	}
	if err := s.DeletePaymentMethod(c.UserContext(), personID, c.Params("methodId")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
