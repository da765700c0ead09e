package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"shul-backend/models"
)

// TenantModels are the tables living in every shul schema.
var TenantModels = []any{
	&models.Person{},
	&models.Campaign{},
	&models.HonorType{},
	&models.Honor{},
	&models.Invoice{},
	&models.InvoiceItem{},
	&models.InvoiceVersion{},
	&models.PaymentMethod{},
	&models.Payment{},
	&models.PaymentAllocation{},
	&models.Subscription{},
	&models.ProcessorConfig{},
	&models.OutboxEvent{},
	&models.IdempotencyKey{},
}

// MigrateTenantSchema applies (idempotent) schema migrations for a single tenant schema.
// It pins search_path to the tenant and performs:
// - AutoMigrate (tables/columns)
// - Indexes that GORM tags cannot express (partial unique default method)
// - Basic CHECK constraints on money columns
func MigrateTenantSchema(ctx context.Context, schema string) error {
	if schema == "" {
		return fmt.Errorf("schema name is empty")
	}

	return DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := CreateSchema(tx, schema); err != nil {
			return fmt.Errorf("create schema failed: %w", err)
		}
		if err := pinSearchPath(tx, schema); err != nil {
			return fmt.Errorf("set search_path failed: %w", err)
		}

		if err := tx.AutoMigrate(TenantModels...); err != nil {
			return fmt.Errorf("tenant automigrate failed: %w", err)
		}

		indexes := []string{
			// at most one default payment method per person
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_payment_methods_one_default ON payment_methods (person_id) WHERE is_default`,
			`CREATE INDEX IF NOT EXISTS idx_invoices_open_due ON invoices (due_date) WHERE status IN ('sent', 'partial')`,
			`CREATE INDEX IF NOT EXISTS idx_outbox_pending ON outbox_events (id) WHERE processed_at IS NULL`,
		}
		for _, stmt := range indexes {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("index migration failed on: %s - %w", stmt, err)
			}
		}

		checks := map[string]string{
			"chk_invoices_balance_range":   `ALTER TABLE invoices ADD CONSTRAINT chk_invoices_balance_range CHECK (status = 'void' OR (balance >= 0 AND balance <= total))`,
			"chk_payments_amount_positive": `ALTER TABLE payments ADD CONSTRAINT chk_payments_amount_positive CHECK (amount > 0)`,
			"chk_allocations_amount_pos":   `ALTER TABLE payment_allocations ADD CONSTRAINT chk_allocations_amount_pos CHECK (amount > 0)`,
			"chk_subscriptions_amount_pos": `ALTER TABLE subscriptions ADD CONSTRAINT chk_subscriptions_amount_pos CHECK (amount > 0)`,
		}
		for name, stmt := range checks {
			var n int64
			if err := tx.Raw(`SELECT COUNT(*) FROM pg_constraint c
				JOIN pg_namespace n ON n.oid = c.connamespace
				WHERE c.conname = ? AND n.nspname = ?`, name, schema).Scan(&n).Error; err != nil {
				return fmt.Errorf("check constraint lookup failed: %w", err)
			}
			if n > 0 {
				continue
			}
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("check constraint migration failed on %s: %w", name, err)
			}
		}
		return nil
	})
}

// MigrateAllTenants migrates every registered shul schema.
func MigrateAllTenants(ctx context.Context) (int, error) {
	schemas, err := TenantSchemas(ctx)
	if err != nil {
		return 0, err
	}
	for i, schema := range schemas {
		if err := MigrateTenantSchema(ctx, schema); err != nil {
			return i, fmt.Errorf("migrate %s: %w", schema, err)
		}
	}
	return len(schemas), nil
}
