package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"shul-backend/models"
)

var validSchema = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// SchemaName derives a schema name from a shul name ("Young Israel" -> "shul_young_israel").
func SchemaName(shulName string) (string, error) {
	safe := strings.ToLower(strings.TrimSpace(shulName))
	safe = strings.Join(strings.Fields(safe), "_")
	safe = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			return r
		}
		return -1
	}, safe)
	safe = "shul_" + safe
	if !validSchema.MatchString(safe) || safe == "shul_" {
		return "", fmt.Errorf("invalid schema name after sanitization: %q", safe)
	}
	return safe, nil
}

func pinSearchPath(tx *gorm.DB, schema string) error {
	if !validSchema.MatchString(schema) {
		return fmt.Errorf("invalid tenant schema %q", schema)
	}
	return tx.Exec(`SET LOCAL search_path = "` + schema + `", public`).Error
}

// CreateSchema creates the tenant schema if it does not exist yet.
func CreateSchema(tx *gorm.DB, schema string) error {
	if !validSchema.MatchString(schema) {
		return fmt.Errorf("invalid tenant schema %q", schema)
	}
	return tx.Exec(`CREATE SCHEMA IF NOT EXISTS "` + schema + `"`).Error
}

// GetTenantDB returns a *gorm.DB bound to the request's tenant.
// Prefer an existing per-request TX (middlewares.TenantTx), else fall back to a session
// where we set the search_path for the connection.
func GetTenantDB(c *fiber.Ctx) (*gorm.DB, error) {
	if v := c.Locals("tx"); v != nil {
		if tx, ok := v.(*gorm.DB); ok && tx != nil {
			return tx, nil
		}
	}

	schema, _ := c.Locals("schema").(string)
	if strings.TrimSpace(schema) == "" {
		return nil, errors.New("tenant schema missing")
	}
	if !validSchema.MatchString(schema) {
		return nil, fmt.Errorf("invalid tenant schema %q", schema)
	}
	if DB == nil {
		return nil, errors.New("database not initialized")
	}

	sess := DB.Session(&gorm.Session{NewDB: true}).WithContext(c.UserContext())
	if err := sess.Exec(`SET search_path = "` + schema + `", public`).Error; err != nil {
		return nil, fmt.Errorf("set search_path failed: %w", err)
	}
	return sess, nil
}

// GetTenantStore wraps GetTenantDB in a Store.
func GetTenantStore(c *fiber.Ctx) (*Store, error) {
	db, err := GetTenantDB(c)
	if err != nil {
		return nil, err
	}
	return NewStore(db), nil
}

// InTenant runs fn in a transaction pinned to schema. Used outside of HTTP
// requests (worker, CLI) where no per-request transaction exists.
func InTenant(ctx context.Context, schema string, fn func(*Store) error) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	return DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := pinSearchPath(tx, schema); err != nil {
			return fmt.Errorf("set search_path failed: %w", err)
		}
		return fn(NewStore(tx))
	})
}

// TenantSchemas lists the schema of every registered shul.
func TenantSchemas(ctx context.Context) ([]string, error) {
	var schemas []string
	err := DB.WithContext(ctx).Model(&models.Shul{}).
		Order("schema_name").
		Pluck("schema_name", &schemas).Error
	return schemas, err
}

// BeginTenant starts a transaction pinned to schema. The caller commits or
// rolls back.
func BeginTenant(ctx context.Context, schema string) (*gorm.DB, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	tx := DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	if err := pinSearchPath(tx, schema); err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	return tx, nil
}

// Tenants lists every registered shul with its schema.
func Tenants(ctx context.Context) ([]models.Shul, error) {
	var shuls []models.Shul
	err := DB.WithContext(ctx).Model(&models.Shul{}).
		Select("id", "name", "schema_name").
		Order("schema_name").
		Find(&shuls).Error
	return shuls, err
}
