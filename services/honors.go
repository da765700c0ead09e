package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"shul-backend/database"
	"shul-backend/models"
)

type BillHonorsInput struct {
	PersonID  string
	HonorIDs  []string // empty bills everything unbilled
	DueDate   *time.Time
	Notes     string
	Issue     bool
	SendEmail bool
}

// BillHonors turns a person's unbilled honors into one invoice, a line per
// honor, and links the honors to it.
func (b *Billing) BillHonors(ctx context.Context, in BillHonorsInput) (*models.Invoice, error) {
	var out *models.Invoice
	err := b.repo.WithinTx(ctx, func(tx database.Repository) error {
		honors, err := tx.UnbilledHonors(ctx, in.PersonID, in.HonorIDs)
		if err != nil {
			return err
		}
		if len(honors) == 0 {
			return ErrNothingToBill
		}
		if len(in.HonorIDs) > 0 && len(honors) != len(in.HonorIDs) {
			return fmt.Errorf("%w: some honors are missing or already billed", database.ErrConflict)
		}

		items := make([]ItemInput, len(honors))
		ids := make([]string, len(honors))
		campaign := sharedCampaign(honors)
		for i := range honors {
			h := &honors[i]
			items[i] = ItemInput{
				Description: honorLine(h),
				Quantity:    decimal.NewFromInt(1),
				UnitPrice:   h.Amount,
				HonorID:     &h.ID,
			}
			ids[i] = h.ID
		}

		inv, err := b.createInvoice(ctx, tx, CreateInvoiceInput{
			PersonID:   in.PersonID,
			CampaignID: campaign,
			Items:      items,
			Notes:      in.Notes,
			DueDate:    in.DueDate,
			Issue:      in.Issue,
			SendEmail:  in.SendEmail,
		})
		if err != nil {
			return err
		}
		if err := tx.MarkHonorsBilled(ctx, ids, inv.ID); err != nil {
			return err
		}
		out = inv
		return nil
	})
	return out, err
}

func honorLine(h *models.Honor) string {
	parts := make([]string, 0, 3)
	if h.HonorType != nil {
		parts = append(parts, h.HonorType.Name)
	}
	if h.Occasion != "" {
		parts = append(parts, h.Occasion)
	}
	parts = append(parts, h.HonorDate.Format("2006-01-02"))
	return strings.Join(parts, " - ")
}

// sharedCampaign returns the campaign all honors belong to, or "".
func sharedCampaign(honors []models.Honor) string {
	var id string
	for i, h := range honors {
		if h.CampaignID == nil {
			return ""
		}
		if i == 0 {
			id = *h.CampaignID
		} else if *h.CampaignID != id {
			return ""
		}
	}
	return id
}
