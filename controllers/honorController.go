package controllers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"shul-backend/database"
	"shul-backend/middlewares"
	"shul-backend/models"
	"shul-backend/services"
	"shul-backend/utils"
)

type HonorTypeInput struct {
	Name          string          `json:"name" validate:"required,min=1"`
	Description   string          `json:"description"`
	DefaultAmount decimal.Decimal `json:"default_amount" validate:"gte=0"`
	Active        *bool           `json:"active"`
}

type HonorTypeUpdateDTO struct {
	Name          *string          `json:"name" validate:"omitempty,min=1"`
	Description   *string          `json:"description"`
	DefaultAmount *decimal.Decimal `json:"default_amount"`
	Active        *bool            `json:"active"`
}

type HonorCreateDTO struct {
	HonorTypeID string           `json:"honor_type_id" validate:"required"`
	PersonID    string           `json:"person_id" validate:"required"`
	Occasion    string           `json:"occasion"`
	HonorDate   time.Time        `json:"honor_date" validate:"required"`
	Amount      *decimal.Decimal `json:"amount"` // defaults to the type's amount
	CampaignID  string           `json:"campaign_id"`
}

type BillHonorsDTO struct {
	PersonID  string     `json:"person_id" validate:"required"`
	HonorIDs  []string   `json:"honor_ids"`
	DueDate   *time.Time `json:"due_date"`
	Notes     string     `json:"notes"`
	Issue     bool       `json:"issue"`
	SendEmail bool       `json:"send_email"`
}

// POST /api/honor-types (batch create)
func CreateHonorTypes(c *fiber.Ctx) error {
	var inputs []HonorTypeInput
	if err := c.BodyParser(&inputs); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if len(inputs) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no honor types given")
	}

	types := make([]models.HonorType, len(inputs))
	for i := range inputs {
		in := &inputs[i]
		if err := middlewares.ValidateStruct(in); err != nil {
			return fiber.NewError(fiber.StatusUnprocessableEntity, fmt.Sprintf("invalid honor type at index %d: %v", i, err))
		}
		utils.NormalizeDTO(in)
		active := true
		if in.Active != nil {
			active = *in.Active
		}
		types[i] = models.HonorType{
			Name:          in.Name,
			Description:   in.Description,
			DefaultAmount: in.DefaultAmount,
			Active:        active,
		}
	}

	s, err := tenantStore(c)
	if err != nil {
		return err
	}
	if err := s.CreateHonorTypes(c.UserContext(), types); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(types)
}

// GET /api/honor-types?active=true
func GetHonorTypes(c *fiber.Ctx) error {
	s, err := tenantStore(c)
	if err != nil {
		return err
	}
	types, err := s.ListHonorTypes(c.UserContext(), c.QueryBool("active", false))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"honor_types": types})
}

// PATCH /api/honor-types/:id
func UpdateHonorType(c *fiber.Ctx) error {
	id, err := pathID(c, "honor type")
	if err != nil {
		return err
	}
	var in HonorTypeUpdateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&in)
	if in.DefaultAmount != nil && in.DefaultAmount.IsNegative() {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "default_amount must not be negative")
	}

	s, err := tenantStore(c)
	if err != nil {
		return err
	}
	ht, err := s.UpdateHonorType(c.UserContext(), id, utils.UpdatesFromPtrDTO(&in, nil))
	if err != nil {
		return err
	}
	return c.JSON(ht)
}

// POST /api/honors
func CreateHonor(c *fiber.Ctx) error {
	var in HonorCreateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	s, err := tenantStore(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()
	ht, err := s.GetHonorType(ctx, in.HonorTypeID)
	if err != nil {
		return fmt.Errorf("honor type: %w", err)
	}
	if _, err := s.GetPerson(ctx, in.PersonID); err != nil {
		return fmt.Errorf("person: %w", err)
	}

	amount := ht.DefaultAmount
	if in.Amount != nil {
		amount = utils.Round2(*in.Amount)
	}
	if !amount.IsPositive() {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "amount must be greater than zero")
	}
	h := models.Honor{
		HonorTypeID: ht.ID,
		PersonID:    in.PersonID,
		Occasion:    in.Occasion,
		HonorDate:   in.HonorDate,
		Amount:      amount,
	}
	if in.CampaignID != "" {
		if _, err := s.GetCampaign(ctx, in.CampaignID); err != nil {
			return fmt.Errorf("campaign: %w", err)
		}
		h.CampaignID = &in.CampaignID
	}
	if err := s.CreateHonor(ctx, &h); err != nil {
		return err
	}
	h.HonorType = ht
	return c.Status(fiber.StatusCreated).JSON(h)
}

// GET /api/honors?person_id=&from=2024-01-01&to=2024-12-31&unbilled=true
func GetHonors(c *fiber.Ctx) error {
	f := database.HonorFilter{
		PersonID:     c.Query("person_id"),
		UnbilledOnly: c.QueryBool("unbilled", false),
	}
	var err error
	if f.From, err = queryDate(c, "from"); err != nil {
		return err
	}
	if f.To, err = queryDate(c, "to"); err != nil {
		return err
	}

	s, err := tenantStore(c)
	if err != nil {
		return err
	}
	honors, err := s.ListHonors(c.UserContext(), f)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"honors": honors})
}

// POST /api/honors/bill
func BillHonors(c *fiber.Ctx) error {
	var in BillHonorsDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	b, _, err := billingFor(c)
	if err != nil {
		return err
	}
	inv, err := b.BillHonors(c.UserContext(), services.BillHonorsInput{
		PersonID:  in.PersonID,
		HonorIDs:  in.HonorIDs,
		DueDate:   in.DueDate,
		Notes:     in.Notes,
		Issue:     in.Issue,
		SendEmail: in.SendEmail,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(inv)
}

func queryDate(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid "+name+" date, want YYYY-MM-DD")
	}
	return &t, nil
}
