package database

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shul-backend/billing"
	"shul-backend/models"
)

var openStatuses = []string{string(billing.StatusSent), string(billing.StatusPartial), string(billing.StatusOverdue)}

// CreateInvoice writes the header, all items, the first version snapshot and
// any outbox events in one transaction.
func (s *Store) CreateInvoice(ctx context.Context, inv *models.Invoice, events ...*models.OutboxEvent) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if inv.Version == 0 {
			inv.Version = 1
		}
		if err := tx.Create(inv).Error; err != nil {
			return classify(err)
		}
		if err := writeSnapshot(tx, inv); err != nil {
			return err
		}
		for _, ev := range events {
			if ev == nil {
				continue
			}
			if err := tx.Create(ev).Error; err != nil {
				return classify(err)
			}
		}
		return nil
	})
}

func writeSnapshot(tx *gorm.DB, inv *models.Invoice) error {
	blob, err := json.Marshal(inv)
	if err != nil {
		return fmt.Errorf("snapshot invoice: %w", err)
	}
	v := models.InvoiceVersion{
		InvoiceID: inv.ID,
		VersionNo: inv.Version,
		Status:    inv.Status,
		Snapshot:  datatypes.JSON(blob),
	}
	return classify(tx.Create(&v).Error)
}

func (s *Store) GetInvoice(ctx context.Context, id string) (*models.Invoice, error) {
	var inv models.Invoice
	if err := s.conn(ctx).Preload("Person").Preload("Campaign").First(&inv, "id = ?", id).Error; err != nil {
		return nil, classify(err)
	}
	return &inv, nil
}

func (s *Store) InvoiceItems(ctx context.Context, invoiceID string) ([]models.InvoiceItem, error) {
	var items []models.InvoiceItem
	err := s.conn(ctx).Where("invoice_id = ?", invoiceID).Order("position").Find(&items).Error
	return items, classify(err)
}

// LockInvoice loads the invoice with SELECT ... FOR UPDATE.
func (s *Store) LockInvoice(ctx context.Context, id string) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&inv, "id = ?", id).Error
	if err != nil {
		return nil, classify(err)
	}
	return &inv, nil
}

// LockOpenInvoices locks a person's open invoices, oldest first. When ids is
// non-empty only those invoices are considered.
func (s *Store) LockOpenInvoices(ctx context.Context, personID string, ids []string) ([]models.Invoice, error) {
	q := s.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("person_id = ? AND status IN ?", personID, openStatuses)
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}
	var out []models.Invoice
	err := q.Order("created_at").Order("id").Find(&out).Error
	return out, classify(err)
}

// SaveInvoiceState persists status/balance changes if nobody else changed
// the invoice since expectedVersion, and snapshots the new version.
func (s *Store) SaveInvoiceState(ctx context.Context, inv *models.Invoice, expectedVersion int) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		res := tx.Model(&models.Invoice{}).
			Where("id = ? AND version = ?", inv.ID, expectedVersion).
			Updates(map[string]any{
				"status":     string(inv.Status),
				"balance":    inv.Balance,
				"version":    expectedVersion + 1,
				"sent_at":    inv.SentAt,
				"voided_at":  inv.VoidedAt,
				"updated_at": now,
			})
		if res.Error != nil {
			return classify(res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}
		inv.Version = expectedVersion + 1
		inv.UpdatedAt = now
		return writeSnapshot(tx, inv)
	})
}

// MarkOverdue flips open invoices whose due date is before asOf's day. Each
// flipped invoice gets a new version and snapshot.
func (s *Store) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	y, m, d := asOf.UTC().Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	var flipped int64
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var due []models.Invoice
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("status IN ? AND due_date IS NOT NULL AND due_date < ?",
				[]string{string(billing.StatusSent), string(billing.StatusPartial)}, day).
			Order("id").
			Find(&due).Error
		if err != nil {
			return classify(err)
		}
		now := time.Now().UTC()
		for i := range due {
			inv := &due[i]
			res := tx.Model(&models.Invoice{}).
				Where("id = ? AND version = ?", inv.ID, inv.Version).
				Updates(map[string]any{
					"status":     string(billing.StatusOverdue),
					"version":    inv.Version + 1,
					"updated_at": now,
				})
			if res.Error != nil {
				return classify(res.Error)
			}
			if res.RowsAffected == 0 {
				continue
			}
			inv.Status = billing.StatusOverdue
			inv.Version++
			inv.UpdatedAt = now
			if err := writeSnapshot(tx, inv); err != nil {
				return err
			}
			flipped++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return flipped, nil
}

// InvoiceFilter narrows ListInvoices.
type InvoiceFilter struct {
	PersonID   string
	CampaignID string
	Status     string
	Search     string // invoice number or payer name
	Sort       string // column, "-" prefix for descending
	Limit      int
	Offset     int
}

var invoiceSortColumns = map[string]string{
	"created_at":     "invoices.created_at",
	"due_date":       "invoices.due_date",
	"total":          "invoices.total",
	"balance":        "invoices.balance",
	"invoice_number": "invoices.invoice_number",
	"status":         "invoices.status",
}

// ListInvoices returns one page of invoices plus the total match count.
func (s *Store) ListInvoices(ctx context.Context, f InvoiceFilter) ([]models.Invoice, int64, error) {
	q := s.conn(ctx).Model(&models.Invoice{})
	if f.PersonID != "" {
		q = q.Where("invoices.person_id = ?", f.PersonID)
	}
	if f.CampaignID != "" {
		q = q.Where("invoices.campaign_id = ?", f.CampaignID)
	}
	if f.Status != "" {
		q = q.Where("invoices.status = ?", f.Status)
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Joins("JOIN people ON people.id = invoices.person_id").
			Where("LOWER(invoices.invoice_number) LIKE ? OR LOWER(people.first_name || ' ' || people.last_name) LIKE ?", like, like)
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, classify(err)
	}

	var out []models.Invoice
	err := q.Preload("Person").
		Order(sortClause(f.Sort, invoiceSortColumns, "invoices.created_at DESC")).
		Limit(f.Limit).Offset(f.Offset).
		Find(&out).Error
	return out, total, classify(err)
}

// InvoiceVersions returns the snapshot history, oldest first.
func (s *Store) InvoiceVersions(ctx context.Context, invoiceID string) ([]models.InvoiceVersion, error) {
	var out []models.InvoiceVersion
	err := s.conn(ctx).Where("invoice_id = ?", invoiceID).Order("version_no").Find(&out).Error
	return out, classify(err)
}

// MemberBalance is a person's outstanding amount across open invoices.
type MemberBalance struct {
	PersonID     string          `json:"person_id"`
	FirstName    string          `json:"first_name"`
	LastName     string          `json:"last_name"`
	OpenInvoices int64           `json:"open_invoices"`
	Total        decimal.Decimal `json:"total"`
	Balance      decimal.Decimal `json:"balance"`
}

// MemberBalances aggregates open invoice balances per person. An empty
// personID returns every person with something outstanding.
func (s *Store) MemberBalances(ctx context.Context, personID string) ([]MemberBalance, error) {
	q := s.conn(ctx).Table("invoices").
		Select(`invoices.person_id AS person_id, people.first_name AS first_name, people.last_name AS last_name,
			COUNT(*) AS open_invoices, SUM(invoices.total) AS total, SUM(invoices.balance) AS balance`).
		Joins("JOIN people ON people.id = invoices.person_id").
		Where("invoices.status IN ?", openStatuses).
		Group("invoices.person_id, people.first_name, people.last_name").
		Order("people.last_name, people.first_name")
	if personID != "" {
		q = q.Where("invoices.person_id = ?", personID)
	}
	var out []MemberBalance
	err := q.Scan(&out).Error
	return out, classify(err)
}

func sortClause(sort string, allowed map[string]string, def string) string {
	sort = strings.TrimSpace(sort)
	dir := "ASC"
	if strings.HasPrefix(sort, "-") {
		dir = "DESC"
		sort = sort[1:]
	}
	col, ok := allowed[sort]
	if !ok {
		return def
	}
	return col + " " + dir
}
