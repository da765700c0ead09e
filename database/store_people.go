package database

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"shul-backend/models"
)

func (s *Store) CreatePerson(ctx context.Context, p *models.Person) error {
	return classify(s.conn(ctx).Create(p).Error)
}

// PersonFilter narrows ListPeople.
type PersonFilter struct {
	Search     string
	MemberOnly bool
	Sort       string
	Limit      int
	Offset     int
}

var personSortColumns = map[string]string{
	"last_name":  "last_name",
	"first_name": "first_name",
	"created_at": "created_at",
	"email":      "email",
}

func (s *Store) ListPeople(ctx context.Context, f PersonFilter) ([]models.Person, int64, error) {
	q := s.conn(ctx).Model(&models.Person{}).Where("active = ?", true)
	if f.MemberOnly {
		q = q.Where("member = ?", true)
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(hebrew_name) LIKE ? OR LOWER(email) LIKE ?",
			like, like, like, like)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, classify(err)
	}
	var out []models.Person
	err := q.Order(sortClause(f.Sort, personSortColumns, "last_name ASC")).Order("first_name").
		Limit(f.Limit).Offset(f.Offset).
		Find(&out).Error
	return out, total, classify(err)
}

func (s *Store) UpdatePerson(ctx context.Context, id string, updates map[string]any) (*models.Person, error) {
	if _, err := s.GetPerson(ctx, id); err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := s.conn(ctx).Model(&models.Person{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, classify(err)
		}
	}
	return s.GetPerson(ctx, id)
}

func (s *Store) CreateCampaign(ctx context.Context, c *models.Campaign) error {
	return classify(s.conn(ctx).Create(c).Error)
}

func (s *Store) ListCampaigns(ctx context.Context, activeOnly bool) ([]models.Campaign, error) {
	q := s.conn(ctx).Model(&models.Campaign{})
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var out []models.Campaign
	err := q.Order("created_at DESC").Find(&out).Error
	return out, classify(err)
}

func (s *Store) UpdateCampaign(ctx context.Context, id string, updates map[string]any) (*models.Campaign, error) {
	if _, err := s.GetCampaign(ctx, id); err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := s.conn(ctx).Model(&models.Campaign{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, classify(err)
		}
	}
	return s.GetCampaign(ctx, id)
}

// CampaignRaised sums money received for a campaign: allocations against its
// invoices plus subscription charges tied to it.
func (s *Store) CampaignRaised(ctx context.Context, campaignID string) (decimal.Decimal, error) {
	var fromInvoices, fromSubscriptions decimal.NullDecimal
	err := s.conn(ctx).Table("payment_allocations").
		Select("SUM(payment_allocations.amount)").
		Joins("JOIN invoices ON invoices.id = payment_allocations.invoice_id").
		Where("invoices.campaign_id = ?", campaignID).
		Row().Scan(&fromInvoices)
	if err != nil {
		return decimal.Zero, classify(err)
	}
	err = s.conn(ctx).Table("payments").
		Select("SUM(payments.amount)").
		Joins("JOIN subscriptions ON subscriptions.id = payments.subscription_id").
		Where("subscriptions.campaign_id = ?", campaignID).
		Row().Scan(&fromSubscriptions)
	if err != nil {
		return decimal.Zero, classify(err)
	}
	return fromInvoices.Decimal.Add(fromSubscriptions.Decimal), nil
}
