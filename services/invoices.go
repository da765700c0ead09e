package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shul-backend/billing"
	"shul-backend/database"
	"shul-backend/models"
)

type ItemInput struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	HonorID     *string
}

type CreateInvoiceInput struct {
	PersonID        string
	CampaignID      string
	RequireCampaign bool
	InvoiceNumber   string
	Items           []ItemInput
	Notes           string
	DueDate         *time.Time
	Issue           bool   // create as sent instead of draft
	SendEmail       bool   // implies Issue
	EmailTo         string // overrides the payer's address
}

// CreateInvoice validates the draft and writes header, items and the
// optional email event together.
func (b *Billing) CreateInvoice(ctx context.Context, in CreateInvoiceInput) (*models.Invoice, error) {
	return b.createInvoice(ctx, b.repo, in)
}

func (b *Billing) createInvoice(ctx context.Context, repo database.Repository, in CreateInvoiceInput) (*models.Invoice, error) {
	lines := make([]billing.Line, len(in.Items))
	for i, it := range in.Items {
		lines[i] = billing.Line{Description: it.Description, Quantity: it.Quantity, UnitPrice: it.UnitPrice}
	}
	totals, err := billing.Draft{
		PersonID:        in.PersonID,
		CampaignID:      in.CampaignID,
		RequireCampaign: in.RequireCampaign,
		Lines:           lines,
	}.Validate()
	if err != nil {
		return nil, err
	}

	if _, err := repo.GetPerson(ctx, in.PersonID); err != nil {
		return nil, fmt.Errorf("payer: %w", err)
	}
	var campaignID *string
	if id := strings.TrimSpace(in.CampaignID); id != "" {
		if _, err := repo.GetCampaign(ctx, id); err != nil {
			return nil, fmt.Errorf("campaign: %w", err)
		}
		campaignID = &id
	}

	now := b.now()
	stored := totals.Cents()
	total := stored.Total
	inv := &models.Invoice{
		InvoiceNumber: strings.TrimSpace(in.InvoiceNumber),
		PersonID:      in.PersonID,
		CampaignID:    campaignID,
		Status:        billing.StatusDraft,
		Notes:         in.Notes,
		DueDate:       in.DueDate,
		Total:         total,
		Balance:       total,
		Version:       1,
		Items:         make([]models.InvoiceItem, len(in.Items)),
	}
	if inv.InvoiceNumber == "" {
		inv.InvoiceNumber = invoiceNumber(now)
	}
	for i, it := range in.Items {
		inv.Items[i] = models.InvoiceItem{
			Position:    i + 1,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Amount:      stored.Amounts[i],
			HonorID:     it.HonorID,
		}
	}
	if in.Issue || in.SendEmail {
		inv.Status = billing.StatusSent
		inv.SentAt = &now
	}

	var events []*models.OutboxEvent
	if in.SendEmail {
		ev, err := invoiceEmailEvent(inv, in.EmailTo)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}

	if err := repo.CreateInvoice(ctx, inv, events...); err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}
	b.log.Info().Str("invoice_id", inv.ID).Str("number", inv.InvoiceNumber).
		Str("total", billing.Display(inv.Total)).Str("status", string(inv.Status)).Msg("invoice created")
	return inv, nil
}

// invoiceNumber is INV-YYYYMMDD-XXXXXX.
func invoiceNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return "INV-" + now.Format("20060102") + "-" + suffix
}

func invoiceEmailEvent(inv *models.Invoice, to string) (*models.OutboxEvent, error) {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	payload, err := json.Marshal(models.InvoiceEmailPayload{InvoiceID: inv.ID, To: strings.TrimSpace(to)})
	if err != nil {
		return nil, fmt.Errorf("encode email event: %w", err)
	}
	return &models.OutboxEvent{Kind: models.EventInvoiceEmail, Payload: payload}, nil
}

// GetInvoice loads an invoice with its items. A failed item read degrades to
// an empty list.
func (b *Billing) GetInvoice(ctx context.Context, id string) (*models.Invoice, error) {
	inv, err := b.repo.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := b.repo.InvoiceItems(ctx, id)
	if err != nil {
		b.log.Warn().Err(err).Str("invoice_id", id).Msg("could not load invoice items")
		items = []models.InvoiceItem{}
	}
	inv.Items = items
	inv.Status = billing.DisplayStatus(inv.Status, inv.DueDate, b.now())
	return inv, nil
}

type SendInvoiceInput struct {
	InvoiceID       string
	ExpectedVersion *int
	Email           bool
	EmailTo         string
}

// SendInvoice issues a draft and, optionally, queues the email. Already issued
// invoices can only have their email resent.
func (b *Billing) SendInvoice(ctx context.Context, in SendInvoiceInput) (*models.Invoice, error) {
	var out *models.Invoice
	err := b.repo.WithinTx(ctx, func(tx database.Repository) error {
		inv, err := tx.LockInvoice(ctx, in.InvoiceID)
		if err != nil {
			return err
		}
		if err := checkVersion(inv.Version, in.ExpectedVersion); err != nil {
			return err
		}
		switch {
		case inv.Status == billing.StatusDraft:
			if err := billing.Transition(inv.Status, billing.StatusSent); err != nil {
				return err
			}
			now := b.now()
			inv.Status = billing.StatusSent
			inv.SentAt = &now
			if err := tx.SaveInvoiceState(ctx, inv, inv.Version); err != nil {
				return err
			}
		case inv.Status == billing.StatusVoid:
			return billing.ErrInvoiceVoid
		case !in.Email:
			return billing.Transition(inv.Status, billing.StatusSent)
		}
		if in.Email {
			ev, err := invoiceEmailEvent(inv, in.EmailTo)
			if err != nil {
				return err
			}
			if err := tx.CreateOutboxEvent(ctx, ev); err != nil {
				return err
			}
		}
		out = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// VoidInvoice cancels an unpaid invoice. Void is terminal.
func (b *Billing) VoidInvoice(ctx context.Context, id string, expectedVersion *int) (*models.Invoice, error) {
	var out *models.Invoice
	err := b.repo.WithinTx(ctx, func(tx database.Repository) error {
		inv, err := tx.LockInvoice(ctx, id)
		if err != nil {
			return err
		}
		if err := checkVersion(inv.Version, expectedVersion); err != nil {
			return err
		}
		if err := billing.Transition(inv.Status, billing.StatusVoid); err != nil {
			return err
		}
		now := b.now()
		inv.Status = billing.StatusVoid
		inv.VoidedAt = &now
		if err := tx.SaveInvoiceState(ctx, inv, inv.Version); err != nil {
			return err
		}
		out = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	b.log.Info().Str("invoice_id", id).Msg("invoice voided")
	return out, nil
}

// SweepOverdue persists the overdue status for invoices past their due date.
func (b *Billing) SweepOverdue(ctx context.Context) (int64, error) {
	n, err := b.repo.MarkOverdue(ctx, b.now())
	if err != nil {
		return 0, fmt.Errorf("mark overdue: %w", err)
	}
	if n > 0 {
		b.log.Info().Int64("count", n).Msg("invoices marked overdue")
	}
	return n, nil
}
