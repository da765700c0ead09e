package controllers

import (
	"github.com/gofiber/fiber/v2"

	"shul-backend/database"
	"shul-backend/middlewares"
	"shul-backend/models"
	"shul-backend/utils"
)

type PersonCreateDTO struct {
	FirstName   string `json:"first_name" validate:"required,min=1"`
	LastName    string `json:"last_name" validate:"required,min=1"`
	HebrewName  string `json:"hebrew_name" validate:"omitempty"`
	Email       string `json:"email" validate:"omitempty,email"`
	PhoneNumber string `json:"phone_number" validate:"omitempty"`
	Address     string `json:"address" validate:"omitempty"`
	City        string `json:"city" validate:"omitempty"`
	Zip         string `json:"zip" validate:"omitempty"`
	Member      bool   `json:"member"`
}

type PersonUpdateDTO struct {
	FirstName   *string `json:"first_name" validate:"omitempty,min=1"`
	LastName    *string `json:"last_name" validate:"omitempty,min=1"`
	HebrewName  *string `json:"hebrew_name" validate:"omitempty"`
	Email       *string `json:"email" validate:"omitempty,email"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty"`
	Address     *string `json:"address" validate:"omitempty"`
	City        *string `json:"city" validate:"omitempty"`
	Zip         *string `json:"zip" validate:"omitempty"`
	Member      *bool   `json:"member"`
	Active      *bool   `json:"active"`
}

// POST /api/people
func CreatePerson(c *fiber.Ctx) error {
	var in PersonCreateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizeDTO(&in)

	s, err := tenantStore(c)
	if err != nil {
		return err
	}
	p := models.Person{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		HebrewName:  in.HebrewName,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		Address:     in.Address,
		City:        in.City,
		Zip:         in.Zip,
		Member:      in.Member,
		Active:      true,
	}
	if err := s.CreatePerson(c.UserContext(), &p); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

// GET /api/people?search=&member=true&sort=-created_at&limit=&offset=
func GetPeople(c *fiber.Ctx) error {
	s, err := tenantStore(c)
	if err != nil {
		return err
	}
	limit, offset := utils.Page(c.Query("limit"), c.Query("offset"))
	people, total, err := s.ListPeople(c.UserContext(), database.PersonFilter{
		Search:     c.Query("search"),
		MemberOnly: c.QueryBool("member", false),
		Sort:       c.Query("sort"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"people": people,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// GET /api/people/:id
func GetPerson(c *fiber.Ctx) error {
	id, err := pathID(c, "person")
	if err != nil {
		return err
	}
	s, err := tenantStore(c)
	if err != nil {
		return err
	}
	p, err := s.GetPerson(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(p)
}

// PATCH /api/people/:id
func UpdatePerson(c *fiber.Ctx) error {
	id, err := pathID(c, "person")
	if err != nil {
		return err
	}
	var in PersonUpdateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&in)

	s, err := tenantStore(c)
	if err != nil {
		return err
	}
	p, err := s.UpdatePerson(c.UserContext(), id, utils.UpdatesFromPtrDTO(&in, nil))
	if err != nil {
		return err
	}
	return c.JSON(p)
}

// GET /api/people/:id/balance
func GetPersonBalance(c *fiber.Ctx) error {
	id, err := pathID(c, "person")
	if err != nil {
		return err
	}
	s, err := tenantStore(c)
	if err != nil {
		return err
	}
	p, err := s.GetPerson(c.UserContext(), id)
	if err != nil {
		return err
	}
	rows, err := s.MemberBalances(c.UserContext(), id)
	if err != nil {
		return err
	}
	out := database.MemberBalance{PersonID: p.ID, FirstName: p.FirstName, LastName: p.LastName}
	if len(rows) > 0 {
		out = rows[0]
	}
	return c.JSON(out)
}

// GET /api/balances
func GetBalances(c *fiber.Ctx) error {
	s, err := tenantStore(c)
	if err != nil {
		return err
	}
	rows, err := s.MemberBalances(c.UserContext(), "")
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"balances": rows})
}
