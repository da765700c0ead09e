package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"shul-backend/billing"
)

// Invoice is the current/live state of a bill sent to a person.
type Invoice struct {
	ID            string         `json:"id" gorm:"primaryKey;size:36"`
	InvoiceNumber string         `json:"invoice_number" gorm:"size:32;unique;not null"`
	PersonID      string         `json:"person_id" gorm:"size:36;not null;index"`
	Person        *Person        `json:"person,omitempty" gorm:"foreignKey:PersonID;references:ID"`
	CampaignID    *string        `json:"campaign_id" gorm:"size:36;index"`
	Campaign      *Campaign      `json:"campaign,omitempty" gorm:"foreignKey:CampaignID;references:ID"`
	Status        billing.Status `json:"status" gorm:"type:varchar(16);not null;index"`
	Notes         string         `json:"notes"`
	DueDate       *time.Time     `json:"due_date"`

	Items   []InvoiceItem   `json:"items" gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	Total   decimal.Decimal `json:"total" gorm:"type:numeric(12,2);not null"`
	Balance decimal.Decimal `json:"balance" gorm:"type:numeric(12,2);not null"`

	// Bumped on every mutation; clients may send it back to detect lost updates.
	Version int `json:"version" gorm:"not null;default:1"`

	SentAt    *time.Time `json:"sent_at"`
	VoidedAt  *time.Time `json:"voided_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (inv *Invoice) BeforeCreate(tx *gorm.DB) (err error) {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	return
}

// Paid is what has been applied so far.
func (inv *Invoice) Paid() decimal.Decimal {
	return inv.Total.Sub(inv.Balance)
}

type InvoiceItem struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	InvoiceID   string          `json:"-" gorm:"size:36;not null;index"`
	Position    int             `json:"position" gorm:"not null"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity" gorm:"type:numeric(12,3);not null"`
	UnitPrice   decimal.Decimal `json:"unit_price" gorm:"type:numeric(12,2);not null"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:numeric(12,2);not null"`
	HonorID     *string         `json:"honor_id,omitempty" gorm:"size:36"`
}

// Immutable snapshot, written on every status change.
type InvoiceVersion struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	InvoiceID string         `json:"invoice_id" gorm:"size:36;index:idx_invoice_versions_invoice_id_version_no,unique,priority:1"`
	VersionNo int            `json:"version_no" gorm:"not null;index:idx_invoice_versions_invoice_id_version_no,unique,priority:2"`
	Status    billing.Status `json:"status" gorm:"type:varchar(16)"`
	Snapshot  datatypes.JSON `json:"snapshot"`
	CreatedAt time.Time      `json:"created_at"`
}
