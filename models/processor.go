package models

import "time"

// Supported payment processors.
const (
	ProcessorCardknox = "cardknox"
	ProcessorStripe   = "stripe"
)

// ProcessorConfig holds the shul's payment processor settings. The secret API
// key is sealed with the server key and never returned by the API.
type ProcessorConfig struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Processor    string    `json:"processor" gorm:"size:16;not null"`
	APIKeySealed []byte    `json:"-" gorm:"not null"`
	PublicKey    string    `json:"public_key"` // iFields / publishable key for the portal
	Active       bool      `json:"active" gorm:"not null;default:true"`
	UpdatedAt    time.Time `json:"updated_at"`
}
