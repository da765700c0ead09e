package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment methods as recorded on a payment.
const (
	MethodCard  = "card"
	MethodACH   = "ach"
	MethodCash  = "cash"
	MethodCheck = "check"
)

// Payment is money received from a person. It is immutable once recorded and
// may be spread over several invoices through its allocations.
type Payment struct {
	ID              string              `json:"id" gorm:"primaryKey;size:36"`
	PersonID        string              `json:"person_id" gorm:"size:36;not null;index:idx_payments_person_paid_at,priority:1"`
	Amount          decimal.Decimal     `json:"amount" gorm:"type:numeric(12,2);not null"`
	Method          string              `json:"method" gorm:"size:16;not null"`
	PaymentMethodID *string             `json:"payment_method_id" gorm:"size:36"`
	SubscriptionID  *string             `json:"subscription_id" gorm:"size:36;index"`
	GatewayRef      string              `json:"gateway_ref"`
	IdempotencyKey  *string             `json:"-" gorm:"size:128;uniqueIndex"`
	Reference       string              `json:"reference"` // check number etc.
	Note            string              `json:"note"`
	Allocations     []PaymentAllocation `json:"allocations" gorm:"foreignKey:PaymentID;constraint:OnDelete:RESTRICT"`
	PaidAt          time.Time           `json:"paid_at" gorm:"not null;index:idx_payments_person_paid_at,priority:2"`
	CreatedAt       time.Time           `json:"created_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return
}

// PaymentAllocation is the part of a payment applied to one invoice.
type PaymentAllocation struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	PaymentID string          `json:"payment_id" gorm:"size:36;not null;index"`
	InvoiceID string          `json:"invoice_id" gorm:"size:36;not null;index"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:numeric(12,2);not null"`
	CreatedAt time.Time       `json:"created_at"`
}
