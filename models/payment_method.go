package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentMethod is a tokenized card or bank account. Raw card data never
// reaches this service; ExternalToken is the processor's reusable token.
type PaymentMethod struct {
	ID               string    `json:"id" gorm:"primaryKey;size:36"`
	PersonID         string    `json:"person_id" gorm:"size:36;not null;index"`
	Kind             string    `json:"kind" gorm:"size:8;not null"` // card | ach
	Brand            string    `json:"brand"`
	Last4            string    `json:"last4" gorm:"size:4"`
	ExpMonth         int       `json:"exp_month"`
	ExpYear          int       `json:"exp_year"`
	Processor        string    `json:"processor" gorm:"size:16;not null"`
	ExternalToken    string    `json:"-" gorm:"not null"`
	ExternalCustomer string    `json:"-"`
	IsDefault        bool      `json:"is_default" gorm:"not null;default:false"`
	CreatedAt        time.Time `json:"created_at"`
}

func (m *PaymentMethod) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return
}
