package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// HonorType is a kibbud in the shul's catalog (aliyah, pesicha, hagbah, ...)
// with the amount usually pledged for it.
type HonorType struct {
	ID            string          `json:"id" gorm:"primaryKey;size:36"`
	Name          string          `json:"name" gorm:"not null;unique"`
	Description   string          `json:"description"`
	DefaultAmount decimal.Decimal `json:"default_amount" gorm:"type:numeric(12,2);not null;default:0"`
	Active        bool            `json:"active" gorm:"not null;default:true"`
}

func (h *HonorType) BeforeCreate(tx *gorm.DB) (err error) {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return
}

// Honor records a kibbud given to a person. InvoiceID is set once the pledge
// has been billed.
type Honor struct {
	ID          string          `json:"id" gorm:"primaryKey;size:36"`
	HonorTypeID string          `json:"honor_type_id" gorm:"size:36;not null;index"`
	HonorType   *HonorType      `json:"honor_type,omitempty" gorm:"foreignKey:HonorTypeID;references:ID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	PersonID    string          `json:"person_id" gorm:"size:36;not null;index"`
	Occasion    string          `json:"occasion"`
	HonorDate   time.Time       `json:"honor_date" gorm:"not null;index"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:numeric(12,2);not null"`
	CampaignID  *string         `json:"campaign_id" gorm:"size:36"`
	InvoiceID   *string         `json:"invoice_id" gorm:"size:36;index"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (h *Honor) BeforeCreate(tx *gorm.DB) (err error) {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return
}
