package models

import "time"

// IdempotencyKey records an Idempotency-Key header and, once the request has
// finished, the response to replay. Keys are per shul schema.
type IdempotencyKey struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	Key            string     `json:"key" gorm:"size:128;uniqueIndex"`
	RequestHash    string     `json:"request_hash" gorm:"size:64"`
	Method         string     `json:"method" gorm:"size:10"`
	Path           string     `json:"path" gorm:"size:255"`
	UserID         string     `json:"user_id" gorm:"size:36"`
	ResponseStatus int        `json:"response_status"`
	ResponseBody   []byte     `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	CompletedAt    *time.Time `json:"completed_at"`
}

// Pending reports whether the original request is still running (or died
// before storing its response).
func (k *IdempotencyKey) Pending() bool {
	return k.ResponseStatus == 0
}
