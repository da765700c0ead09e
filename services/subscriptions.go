package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"shul-backend/billing"
	"shul-backend/database"
	"shul-backend/gateway"
	"shul-backend/models"
)

type CreateSubscriptionInput struct {
	PersonID          string
	CampaignID        string
	PaymentMethodID   string
	Amount            decimal.Decimal
	Frequency         billing.Frequency
	InstallmentsTotal int
	StartDate         *time.Time
	EndDate           *time.Time
}

func (b *Billing) CreateSubscription(ctx context.Context, in CreateSubscriptionInput) (*models.Subscription, error) {
	if !in.Amount.IsPositive() {
		return nil, billing.ErrNonPositiveAmount
	}
	if _, err := billing.NextChargeDate(b.now(), in.Frequency); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFrequency, in.Frequency)
	}
	if in.PaymentMethodID == "" {
		return nil, ErrNoMethod
	}
	if _, err := b.repo.GetPerson(ctx, in.PersonID); err != nil {
		return nil, fmt.Errorf("person: %w", err)
	}
	if _, err := b.ownedMethod(ctx, b.repo, in.PersonID, in.PaymentMethodID); err != nil {
		return nil, err
	}
	var campaignID *string
	if in.CampaignID != "" {
		if _, err := b.repo.GetCampaign(ctx, in.CampaignID); err != nil {
			return nil, fmt.Errorf("campaign: %w", err)
		}
		campaignID = &in.CampaignID
	}

	start := day(b.now())
	if in.StartDate != nil {
		start = day(*in.StartDate)
	}
	sub := &models.Subscription{
		PersonID:          in.PersonID,
		CampaignID:        campaignID,
		PaymentMethodID:   in.PaymentMethodID,
		Amount:            in.Amount,
		Frequency:         in.Frequency,
		InstallmentsTotal: in.InstallmentsTotal,
		NextChargeDate:    start,
		EndDate:           in.EndDate,
		Status:            models.SubscriptionActive,
	}
	if err := b.repo.CreateSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}
	return sub, nil
}

func (b *Billing) CancelSubscription(ctx context.Context, id string) (*models.Subscription, error) {
	var out *models.Subscription
	err := b.repo.WithinTx(ctx, func(tx database.Repository) error {
		sub, err := tx.LockSubscription(ctx, id)
		if err != nil {
			return err
		}
		if sub.Status != models.SubscriptionActive {
			return ErrNotActive
		}
		now := b.now()
		sub.Status = models.SubscriptionCanceled
		sub.CanceledAt = &now
		if err := tx.SaveSubscription(ctx, sub); err != nil {
			return err
		}
		out = sub
		return nil
	})
	return out, err
}

// ChargeSubscription runs one due installment. A declined charge is stored
// on the subscription and retried on a later run; it is not an error here.
func (b *Billing) ChargeSubscription(ctx context.Context, id string) (charged bool, err error) {
	err = b.repo.WithinTx(ctx, func(tx database.Repository) error {
		sub, err := tx.LockSubscription(ctx, id)
		if err != nil {
			return err
		}
		now := b.now()
		if sub.Status != models.SubscriptionActive || sub.NextChargeDate.After(now) {
			return nil
		}
		if billing.InstallmentDone(sub.InstallmentsPaid, sub.InstallmentsTotal, sub.NextChargeDate, sub.EndDate) {
			sub.Status = models.SubscriptionCompleted
			return tx.SaveSubscription(ctx, sub)
		}

		method, err := b.ownedMethod(ctx, tx, sub.PersonID, sub.PaymentMethodID)
		if err != nil {
			return b.failSubscription(ctx, tx, sub, err)
		}
		gw, err := b.gatewayFor(ctx, tx)
		if err != nil {
			return err
		}
		// one key per installment and attempt day
		key := fmt.Sprintf("sub-%s-%s-%s", sub.ID, sub.NextChargeDate.Format("20060102"), now.Format("20060102"))
		res, err := gw.Charge(ctx, gateway.ChargeRequest{
			Amount:         sub.Amount,
			Token:          method.ExternalToken,
			Customer:       method.ExternalCustomer,
			Kind:           method.Kind,
			Description:    "Recurring donation",
			IdempotencyKey: key,
		})
		if err != nil {
			var decline *gateway.DeclineError
			if errors.As(err, &decline) {
				return b.failSubscription(ctx, tx, sub, err)
			}
			return err
		}

		p := &models.Payment{
			PersonID:        sub.PersonID,
			Amount:          sub.Amount,
			Method:          method.Kind,
			PaymentMethodID: &method.ID,
			SubscriptionID:  &sub.ID,
			GatewayRef:      res.Reference,
			IdempotencyKey:  &key,
			PaidAt:          now,
		}
		if err := b.record(ctx, tx, p, gw.Name()); err != nil {
			return err
		}

		next, err := billing.NextChargeDate(sub.NextChargeDate, sub.Frequency)
		if err != nil {
			return err
		}
		sub.InstallmentsPaid++
		sub.NextChargeDate = next
		sub.LastError = ""
		if billing.InstallmentDone(sub.InstallmentsPaid, sub.InstallmentsTotal, next, sub.EndDate) {
			sub.Status = models.SubscriptionCompleted
		}
		if err := tx.SaveSubscription(ctx, sub); err != nil {
			return err
		}
		charged = true
		return nil
	})
	return charged, err
}

func (b *Billing) failSubscription(ctx context.Context, tx database.Repository, sub *models.Subscription, cause error) error {
	b.log.Warn().Err(cause).Str("subscription_id", sub.ID).Msg("subscription charge failed")
	sub.LastError = cause.Error()
	return tx.SaveSubscription(ctx, sub)
}

// DueSubscriptions lists the ids the runner should charge now.
func (b *Billing) DueSubscriptions(ctx context.Context, limit int) ([]string, error) {
	return b.repo.DueSubscriptionIDs(ctx, b.now(), limit)
}

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
