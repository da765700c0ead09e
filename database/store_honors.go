package database

import (
	"context"
	"time"

	"gorm.io/gorm"

	"shul-backend/models"
)

// CreateHonorTypes inserts the batch atomically.
func (s *Store) CreateHonorTypes(ctx context.Context, types []models.HonorType) error {
	if len(types) == 0 {
		return nil
	}
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return classify(tx.Create(&types).Error)
	})
}

func (s *Store) ListHonorTypes(ctx context.Context, activeOnly bool) ([]models.HonorType, error) {
	q := s.conn(ctx).Model(&models.HonorType{})
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var out []models.HonorType
	err := q.Order("name").Find(&out).Error
	return out, classify(err)
}

func (s *Store) GetHonorType(ctx context.Context, id string) (*models.HonorType, error) {
	var ht models.HonorType
	if err := s.conn(ctx).First(&ht, "id = ?", id).Error; err != nil {
		return nil, classify(err)
	}
	return &ht, nil
}

func (s *Store) UpdateHonorType(ctx context.Context, id string, updates map[string]any) (*models.HonorType, error) {
	if len(updates) > 0 {
		res := s.conn(ctx).Model(&models.HonorType{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, classify(res.Error)
		}
	}
	return s.GetHonorType(ctx, id)
}

func (s *Store) CreateHonor(ctx context.Context, h *models.Honor) error {
	return classify(s.conn(ctx).Create(h).Error)
}

// HonorFilter narrows ListHonors.
type HonorFilter struct {
	PersonID     string
	From, To     *time.Time
	UnbilledOnly bool
}

func (s *Store) ListHonors(ctx context.Context, f HonorFilter) ([]models.Honor, error) {
	q := s.conn(ctx).Model(&models.Honor{}).Preload("HonorType")
	if f.PersonID != "" {
		q = q.Where("person_id = ?", f.PersonID)
	}
	if f.From != nil {
		q = q.Where("honor_date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("honor_date <= ?", *f.To)
	}
	if f.UnbilledOnly {
		q = q.Where("invoice_id IS NULL")
	}
	var out []models.Honor
	err := q.Order("honor_date DESC").Find(&out).Error
	return out, classify(err)
}

// UnbilledHonors returns a person's honors that are not on an invoice yet,
// optionally restricted to ids.
func (s *Store) UnbilledHonors(ctx context.Context, personID string, ids []string) ([]models.Honor, error) {
	q := s.conn(ctx).Preload("HonorType").
		Where("person_id = ? AND invoice_id IS NULL", personID)
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}
	var out []models.Honor
	err := q.Order("honor_date").Order("id").Find(&out).Error
	return out, classify(err)
}

// MarkHonorsBilled binds every honor in ids to invoiceID, or none of them when
// any is already billed.
func (s *Store) MarkHonorsBilled(ctx context.Context, ids []string, invoiceID string) error {
	if len(ids) == 0 {
		return nil
	}
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Honor{}).
			Where("id IN ? AND invoice_id IS NULL", ids).
			Update("invoice_id", invoiceID)
		if res.Error != nil {
			return classify(res.Error)
		}
		if res.RowsAffected != int64(len(ids)) {
			return ErrConflict
		}
		return nil
	})
}
