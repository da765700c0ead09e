package database

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"shul-backend/models"
)

var ErrKeyReused = errors.New("idempotency key reused with a different request")

// ClaimIdempotencyKey returns the stored record for key, creating a pending
// one when the key is new. created reports whether this call inserted it.
func (s *Store) ClaimIdempotencyKey(ctx context.Context, rec *models.IdempotencyKey) (existing *models.IdempotencyKey, created bool, err error) {
	var found models.IdempotencyKey
	err = s.conn(ctx).Where("key = ?", rec.Key).First(&found).Error
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		rec.ResponseStatus = 0
		if cerr := s.conn(ctx).Create(rec).Error; cerr == nil {
			return rec, true, nil
		}
		// lost a race with a concurrent request; read the winner
		if err := s.conn(ctx).Where("key = ?", rec.Key).First(&found).Error; err != nil {
			return nil, false, classify(err)
		}
	default:
		return nil, false, classify(err)
	}
	if found.RequestHash != rec.RequestHash {
		return &found, false, ErrKeyReused
	}
	return &found, false, nil
}

// CompleteIdempotencyKey stores the response for key.
func (s *Store) CompleteIdempotencyKey(ctx context.Context, key string, status int, body []byte, at time.Time) error {
	blob := make([]byte, len(body))
	copy(blob, body)
	err := s.conn(ctx).Model(&models.IdempotencyKey{}).
		Where("key = ?", key).
		Updates(map[string]any{
			"response_status": status,
			"response_body":   blob,
			"completed_at":    &at,
		}).Error
	return classify(err)
}

// ReleaseIdempotencyKey drops a pending key so the request can be retried.
func (s *Store) ReleaseIdempotencyKey(ctx context.Context, key string) error {
	err := s.conn(ctx).Where("key = ? AND response_status = 0", key).Delete(&models.IdempotencyKey{}).Error
	return classify(err)
}
