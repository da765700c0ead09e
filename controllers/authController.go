package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"shul-backend/database"
	"shul-backend/logger"
	"shul-backend/middlewares"
	"shul-backend/models"
)

type RegisterDTO struct {
	ShulName        string `json:"shul_name" validate:"required,min=2,max=80"`
	Address         string `json:"address" validate:"required"`
	City            string `json:"city" validate:"required"`
	Country         string `json:"country" validate:"required"`
	Zip             string `json:"zip" validate:"required"`
	Homepage        string `json:"homepage" validate:"omitempty,url"`
	TaxID           string `json:"tax_id"`
	ShulEmail       string `json:"shul_email" validate:"omitempty,email"`
	PhoneNumber     string `json:"phone_number"`
	RabbiName       string `json:"rabbi_name"`
	FirstName       string `json:"first_name" validate:"required"`
	LastName        string `json:"last_name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

type LoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserCreateDTO struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Role      string `json:"role" validate:"required,oneof=admin gabbai"`
}

func emailTaken(email string) (bool, error) {
	var n int64
	err := database.DB.Model(&models.User{}).Where("LOWER(email) = ?", strings.ToLower(email)).Count(&n).Error
	return n > 0, err
}

// POST /api/registration creates a shul, its schema and its first admin.
func Register(c *fiber.Ctx) error {
	var in RegisterDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	taken, err := emailTaken(in.Email)
	if err != nil {
		return err
	}
	if taken {
		return fiber.NewError(fiber.StatusBadRequest, "email already exists")
	}

	schemaName, err := database.SchemaName(in.ShulName)
	if err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "shul name cannot be used")
	}
	var existing int64
	if err := database.DB.Model(&models.Shul{}).
		Where("schema_name = ? OR name = ?", schemaName, strings.TrimSpace(in.ShulName)).
		Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return fiber.NewError(fiber.StatusConflict, "a shul with this name is already registered")
	}

	ctx := c.UserContext()
	authLog := logger.WithComponent("auth")
	if err := database.MigrateTenantSchema(ctx, schemaName); err != nil {
		authLog.Error().Err(err).Str("schema", schemaName).Msg("could not migrate tenant schema")
		return fiber.NewError(fiber.StatusInternalServerError, "could not migrate tenant schema")
	}

	user := models.User{
		FirstName:  strings.TrimSpace(in.FirstName),
		LastName:   strings.TrimSpace(in.LastName),
		Email:      strings.TrimSpace(in.Email),
		Role:       models.RoleAdmin,
		SchemaName: schemaName,
	}
	if err := user.SetPassword(in.Password); err != nil {
		return err
	}
	shul := models.Shul{
		Name:        strings.TrimSpace(in.ShulName),
		Address:     strings.TrimSpace(in.Address),
		City:        strings.TrimSpace(in.City),
		Country:     strings.TrimSpace(in.Country),
		Zip:         strings.TrimSpace(in.Zip),
		Homepage:    strings.TrimSpace(in.Homepage),
		TaxID:       strings.TrimSpace(in.TaxID),
		Email:       strings.TrimSpace(in.ShulEmail),
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
		RabbiName:   strings.TrimSpace(in.RabbiName),
		SchemaName:  schemaName,
	}
	err = database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		shul.UserId = user.Id
		return tx.Omit("User").Create(&shul).Error
	})
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "registration failed")
	}
	shul.User = user

	authLog.Info().Str("schema", schemaName).Str("user_id", user.Id).Msg("shul registered")
	return c.Status(fiber.StatusCreated).JSON(shul)
}

// POST /api/login
func Login(c *fiber.Ctx) error {
	var in LoginDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	var user models.User
	err := database.DB.WithContext(c.UserContext()).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(in.Email))).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusBadRequest, "invalid credentials")
		}
		return err
	}
	if err := user.ComparePassword(in.Password); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid credentials")
	}

	token, err := middlewares.GenerateJWT(user.Id, user.SchemaName, user.Role)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"token":  token,
		"schema": user.SchemaName,
		"user": fiber.Map{
			"id":    user.Id,
			"name":  user.FirstName + " " + user.LastName,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

// POST /api/logout. Tokens are stateless; the client drops its copy.
func Logout(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "success",
	})
}

// GET /api/me
func Me(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)
	var user models.User
	if err := database.DB.WithContext(c.UserContext()).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "user no longer exists")
		}
		return err
	}
	var shul models.Shul
	if err := database.DB.WithContext(c.UserContext()).First(&shul, "schema_name = ?", user.SchemaName).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": user, "shul": shul})
}

// POST /api/users (admin) adds a user to the caller's shul.
func CreateUser(c *fiber.Ctx) error {
	var in UserCreateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	schema, _ := c.Locals("schema").(string)

	taken, err := emailTaken(in.Email)
	if err != nil {
		return err
	}
	if taken {
		return fiber.NewError(fiber.StatusBadRequest, "email already exists")
	}

	user := models.User{
		FirstName:  strings.TrimSpace(in.FirstName),
		LastName:   strings.TrimSpace(in.LastName),
		Email:      strings.TrimSpace(in.Email),
		Role:       in.Role,
		SchemaName: schema,
	}
	if err := user.SetPassword(in.Password); err != nil {
		return err
	}
	if err := database.DB.WithContext(c.UserContext()).Create(&user).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create user")
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// GET /api/users (admin)
func GetUsers(c *fiber.Ctx) error {
	schema, _ := c.Locals("schema").(string)
	var users []models.User
	if err := database.DB.WithContext(c.UserContext()).
		Where("schema_name = ?", schema).
		Order("last_name, first_name").
		Find(&users).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"users": users})
}
