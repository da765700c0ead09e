package models

import (
	"time"

	"gorm.io/datatypes"
)

// Outbox event kinds.
const (
	EventInvoiceEmail = "invoice.email"
)

// OutboxEvent is a side effect recorded in the same transaction as the data
// it describes and delivered later by the worker.
type OutboxEvent struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Kind        string         `json:"kind" gorm:"size:32;not null;index"`
	Payload     datatypes.JSON `json:"payload"`
	Attempts    int            `json:"attempts" gorm:"not null;default:0"`
	LastError   string         `json:"last_error"`
	ProcessedAt *time.Time     `json:"processed_at" gorm:"index"`
	CreatedAt   time.Time      `json:"created_at"`
}

// InvoiceEmailPayload is the payload of an EventInvoiceEmail event.
type InvoiceEmailPayload struct {
	InvoiceID string `json:"invoice_id"`
	To        string `json:"to,omitempty"` // overrides the payer's address
}
