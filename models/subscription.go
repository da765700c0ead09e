package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"shul-backend/billing"
)

const (
	SubscriptionActive    = "active"
	SubscriptionCanceled  = "canceled"
	SubscriptionCompleted = "completed"
)

// Subscription is a recurring pledge or an installment plan charged to a
// stored payment method. InstallmentsTotal of zero means open-ended.
type Subscription struct {
	ID                string            `json:"id" gorm:"primaryKey;size:36"`
	PersonID          string            `json:"person_id" gorm:"size:36;not null;index"`
	CampaignID        *string           `json:"campaign_id" gorm:"size:36;index"`
	PaymentMethodID   string            `json:"payment_method_id" gorm:"size:36;not null"`
	Amount            decimal.Decimal   `json:"amount" gorm:"type:numeric(12,2);not null"`
	Frequency         billing.Frequency `json:"frequency" gorm:"size:16;not null"`
	InstallmentsTotal int               `json:"installments_total" gorm:"not null;default:0"`
	InstallmentsPaid  int               `json:"installments_paid" gorm:"not null;default:0"`
	NextChargeDate    time.Time         `json:"next_charge_date" gorm:"not null;index"`
	EndDate           *time.Time        `json:"end_date"`
	Status            string            `json:"status" gorm:"size:16;not null;index"`
	LastError         string            `json:"last_error"`
	CanceledAt        *time.Time        `json:"canceled_at"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return
}
