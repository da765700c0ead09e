package models

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Roles. A gabbai runs the day-to-day books; only an admin manages users and
// the payment processor.
const (
	RoleAdmin  = "admin"
	RoleGabbai = "gabbai"
)

func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleGabbai
}

type User struct {
	Id         string `json:"id" gorm:"primaryKey;size:36"`
	FirstName  string `json:"first_name" gorm:"not null"`
	LastName   string `json:"last_name" gorm:"not null"`
	Password   []byte `json:"-" gorm:"not null"`
	Email      string `json:"email" gorm:"unique;not null"`
	Role       string `json:"role" gorm:"size:16;not null;default:admin"`
	SchemaName string `json:"-" gorm:"index;not null"`
}

func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.Id == "" {
		user.Id = uuid.NewString()
	}
	return
}

func (user *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return err
	}
	user.Password = hashedPassword
	return nil
}

func (user *User) ComparePassword(password string) error {
	return bcrypt.CompareHashAndPassword(user.Password, []byte(password))
}
