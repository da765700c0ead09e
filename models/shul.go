package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Shul is the tenant. It lives in the public schema and owns one
// PostgreSQL schema holding all of its data.
type Shul struct {
	Id          string `json:"id" gorm:"primaryKey;size:36"`
	Name        string `json:"name" gorm:"not null;unique"`
	Address     string `json:"address" gorm:"not null"`
	City        string `json:"city" gorm:"not null"`
	Country     string `json:"country" gorm:"not null"`
	Zip         string `json:"zip" gorm:"not null"`
	Homepage    string `json:"homepage" gorm:"null"`
	TaxID       string `json:"tax_id" gorm:"null"`
	Email       string `json:"email" gorm:"null"`
	PhoneNumber string `json:"phone_number" gorm:"null"`
	RabbiName   string `json:"rabbi_name" gorm:"null"`
	UserId      string `json:"-"`
	User        User   `json:"user" gorm:"foreignKey:UserId;references:Id"`
	SchemaName  string `json:"-" gorm:"unique;not null"`
}

func (shul *Shul) BeforeCreate(tx *gorm.DB) (err error) {
	if shul.Id == "" {
		shul.Id = uuid.NewString()
	}
	return
}
