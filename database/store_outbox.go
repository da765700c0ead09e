package database

import (
	"context"
	"time"

	"gorm.io/gorm"

	"shul-backend/models"
)

func (s *Store) CreateOutboxEvent(ctx context.Context, ev *models.OutboxEvent) error {
	return classify(s.conn(ctx).Create(ev).Error)
}

// PendingOutbox returns unprocessed events that still have attempts left,
// oldest first.
func (s *Store) PendingOutbox(ctx context.Context, limit, maxAttempts int) ([]models.OutboxEvent, error) {
	var out []models.OutboxEvent
	err := s.conn(ctx).
		Where("processed_at IS NULL AND attempts < ?", maxAttempts).
		Order("id").
		Limit(limit).
		Find(&out).Error
	return out, classify(err)
}

func (s *Store) MarkOutboxProcessed(ctx context.Context, id uint, at time.Time) error {
	res := s.conn(ctx).Model(&models.OutboxEvent{}).Where("id = ?", id).
		Updates(map[string]any{
			"processed_at": at,
			"attempts":     gorm.Expr("attempts + 1"),
			"last_error":   "",
		})
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) MarkOutboxFailed(ctx context.Context, id uint, reason string) error {
	if len(reason) > 500 {
		reason = reason[:500]
	}
	res := s.conn(ctx).Model(&models.OutboxEvent{}).Where("id = ?", id).
		Updates(map[string]any{
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": reason,
		})
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
