package database

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"shul-backend/models"
)

func (s *Store) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	return classify(s.conn(ctx).Create(sub).Error)
}

func (s *Store) GetSubscription(ctx context.Context, id string) (*models.Subscription, error) {
	var sub models.Subscription
	if err := s.conn(ctx).First(&sub, "id = ?", id).Error; err != nil {
		return nil, classify(err)
	}
	return &sub, nil
}

func (s *Store) LockSubscription(ctx context.Context, id string) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&sub, "id = ?", id).Error
	if err != nil {
		return nil, classify(err)
	}
	return &sub, nil
}

func (s *Store) SaveSubscription(ctx context.Context, sub *models.Subscription) error {
	return classify(s.conn(ctx).Save(sub).Error)
}

// DueSubscriptionIDs lists active subscriptions whose next charge is due.
func (s *Store) DueSubscriptionIDs(ctx context.Context, asOf time.Time, limit int) ([]string, error) {
	var ids []string
	err := s.conn(ctx).Model(&models.Subscription{}).
		Where("status = ? AND next_charge_date <= ?", models.SubscriptionActive, asOf).
		Order("next_charge_date").
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, classify(err)
}

// SubscriptionFilter narrows ListSubscriptions.
type SubscriptionFilter struct {
	PersonID   string
	CampaignID string
	Status     string
}

func (s *Store) ListSubscriptions(ctx context.Context, f SubscriptionFilter) ([]models.Subscription, error) {
	q := s.conn(ctx).Model(&models.Subscription{})
	if f.PersonID != "" {
		q = q.Where("person_id = ?", f.PersonID)
	}
	if f.CampaignID != "" {
		q = q.Where("campaign_id = ?", f.CampaignID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var out []models.Subscription
	err := q.Order("created_at DESC").Find(&out).Error
	return out, classify(err)
}
