package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Person is an entry on the member roll. Non-members (guests, one-time
// donors) are people too.
type Person struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	FirstName   string    `json:"first_name" gorm:"not null"`
	LastName    string    `json:"last_name" gorm:"not null;index"`
	HebrewName  string    `json:"hebrew_name"`
	Email       string    `json:"email" gorm:"index"`
	PhoneNumber string    `json:"phone_number"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	Zip         string    `json:"zip"`
	Member      bool      `json:"member"`
	Active      bool      `json:"active" gorm:"not null;default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p *Person) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return
}

func (p *Person) FullName() string {
	return p.FirstName + " " + p.LastName
}
