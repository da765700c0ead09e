package database

import (
	"context"

	"gorm.io/gorm"

	"shul-backend/models"
)

// CreatePayment inserts the payment together with its allocations.
func (s *Store) CreatePayment(ctx context.Context, p *models.Payment) error {
	return classify(s.conn(ctx).Create(p).Error)
}

func (s *Store) FindPaymentByIdempotencyKey(ctx context.Context, key string) (*models.Payment, error) {
	var p models.Payment
	err := s.conn(ctx).Preload("Allocations").Where("idempotency_key = ?", key).First(&p).Error
	if err != nil {
		return nil, classify(err)
	}
	return &p, nil
}

// PaymentFilter narrows ListPayments.
type PaymentFilter struct {
	PersonID       string
	InvoiceID      string
	SubscriptionID string
	Limit          int
	Offset         int
}

// ListPayments returns payments newest first, with their allocations.
func (s *Store) ListPayments(ctx context.Context, f PaymentFilter) ([]models.Payment, error) {
	q := s.conn(ctx).Model(&models.Payment{}).Preload("Allocations")
	if f.PersonID != "" {
		q = q.Where("payments.person_id = ?", f.PersonID)
	}
	if f.SubscriptionID != "" {
		q = q.Where("payments.subscription_id = ?", f.SubscriptionID)
	}
	if f.InvoiceID != "" {
		q = q.Where("payments.id IN (?)",
			s.conn(ctx).Model(&models.PaymentAllocation{}).Select("payment_id").Where("invoice_id = ?", f.InvoiceID))
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	var out []models.Payment
	err := q.Order("payments.paid_at DESC").Order("payments.id").Find(&out).Error
	return out, classify(err)
}

func (s *Store) GetPaymentMethod(ctx context.Context, id string) (*models.PaymentMethod, error) {
	var m models.PaymentMethod
	if err := s.conn(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, classify(err)
	}
	return &m, nil
}

func (s *Store) CreatePaymentMethod(ctx context.Context, m *models.PaymentMethod) error {
	return classify(s.conn(ctx).Create(m).Error)
}

func (s *Store) CountPaymentMethods(ctx context.Context, personID string) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&models.PaymentMethod{}).Where("person_id = ?", personID).Count(&n).Error
	return n, classify(err)
}

// ListPaymentMethods returns a person's methods, default first.
func (s *Store) ListPaymentMethods(ctx context.Context, personID string) ([]models.PaymentMethod, error) {
	var out []models.PaymentMethod
	err := s.conn(ctx).Where("person_id = ?", personID).
		Order("is_default DESC").Order("created_at").
		Find(&out).Error
	return out, classify(err)
}

// SetDefaultPaymentMethod flags methodID as the person's only default. The
// old default is cleared first: the partial unique index on
// (person_id) WHERE is_default is checked row by row, not per statement.
func (s *Store) SetDefaultPaymentMethod(ctx context.Context, personID, methodID string) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.PaymentMethod{}).
			Where("id = ? AND person_id = ?", methodID, personID).
			Count(&n).Error; err != nil {
			return classify(err)
		}
		if n == 0 {
			return ErrNotFound
		}
		err := tx.Model(&models.PaymentMethod{}).
			Where("person_id = ? AND is_default = ? AND id <> ?", personID, true, methodID).
			Update("is_default", false).Error
		if err != nil {
			return classify(err)
		}
		err = tx.Model(&models.PaymentMethod{}).
			Where("id = ?", methodID).
			Update("is_default", true).Error
		return classify(err)
	})
}

// DeletePaymentMethod removes a method. Subscriptions still pointing at it
// block the delete.
func (s *Store) DeletePaymentMethod(ctx context.Context, personID, methodID string) error {
	var inUse int64
	if err := s.conn(ctx).Model(&models.Subscription{}).
		Where("payment_method_id = ? AND status = ?", methodID, models.SubscriptionActive).
		Count(&inUse).Error; err != nil {
		return classify(err)
	}
	if inUse > 0 {
		return ErrConstraint
	}
	res := s.conn(ctx).Where("id = ? AND person_id = ?", methodID, personID).Delete(&models.PaymentMethod{})
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
