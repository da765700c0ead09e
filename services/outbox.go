package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"shul-backend/database"
	"shul-backend/logger"
	"shul-backend/models"
	"shul-backend/notify"
)

// MaxOutboxAttempts is how often an event is tried before it is left alone.
const MaxOutboxAttempts = 5

// Dispatcher delivers pending outbox events for one shul.
type Dispatcher struct {
	repo     database.Repository
	mailer   notify.Mailer
	shulName string
	now      func() time.Time
	log      zerolog.Logger
}

func NewDispatcher(repo database.Repository, mailer notify.Mailer, shulName string) *Dispatcher {
	return &Dispatcher{
		repo:     repo,
		mailer:   mailer,
		shulName: shulName,
		now:      func() time.Time { return time.Now().UTC() },
		log:      logger.WithComponent("outbox"),
	}
}

// Dispatch handles up to limit events. Failures are recorded on the event;
// only store errors are returned.
func (d *Dispatcher) Dispatch(ctx context.Context, limit int) (sent int, err error) {
	events, err := d.repo.PendingOutbox(ctx, limit, MaxOutboxAttempts)
	if err != nil {
		return 0, fmt.Errorf("load outbox: %w", err)
	}
	for _, ev := range events {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		if derr := d.deliver(ctx, ev); derr != nil {
			d.log.Warn().Err(derr).Uint("event_id", ev.ID).Str("kind", ev.Kind).Int("attempt", ev.Attempts+1).Msg("outbox delivery failed")
			if err := d.repo.MarkOutboxFailed(ctx, ev.ID, derr.Error()); err != nil {
				return sent, err
			}
			continue
		}
		if err := d.repo.MarkOutboxProcessed(ctx, ev.ID, d.now()); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

func (d *Dispatcher) deliver(ctx context.Context, ev models.OutboxEvent) error {
	switch ev.Kind {
	case models.EventInvoiceEmail:
		var p models.InvoiceEmailPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		inv, err := d.repo.GetInvoice(ctx, p.InvoiceID)
		if err != nil {
			return fmt.Errorf("invoice %s: %w", p.InvoiceID, err)
		}
		items, err := d.repo.InvoiceItems(ctx, inv.ID)
		if err != nil {
			return fmt.Errorf("invoice items: %w", err)
		}
		to := strings.TrimSpace(p.To)
		if to == "" && inv.Person != nil {
			to = inv.Person.Email
		}
		if to == "" {
			return fmt.Errorf("no recipient for invoice %s", inv.InvoiceNumber)
		}
		return d.mailer.Send(ctx, notify.InvoiceMessage(d.shulName, to, inv, items))
	}
	return fmt.Errorf("unknown event kind %q", ev.Kind)
}
