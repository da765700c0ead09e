package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"shul-backend/billing"
	"shul-backend/database"
	"shul-backend/gateway"
	"shul-backend/models"
)

type PayInvoiceInput struct {
	InvoiceID       string
	Amount          *decimal.Decimal // nil charges the full balance
	PaymentMethodID string
	IdempotencyKey  string
	ExpectedVersion *int
}

// PaymentResult is the recorded payment and the invoices it touched.
type PaymentResult struct {
	Payment  *models.Payment   `json:"payment"`
	Invoices []*models.Invoice `json:"invoices"`
	Replayed bool              `json:"replayed"`
}

// PayInvoice charges a stored method and applies the amount to one invoice.
// The invoice row stays locked from validation until the payment is
// recorded; a declined charge writes nothing.
func (b *Billing) PayInvoice(ctx context.Context, in PayInvoiceInput) (*PaymentResult, error) {
	if strings.TrimSpace(in.PaymentMethodID) == "" {
		return nil, ErrNoMethod
	}
	if in.Amount != nil && !in.Amount.IsPositive() {
		return nil, billing.ErrNonPositiveAmount
	}
	if res, err := b.replay(ctx, in.IdempotencyKey); res != nil || err != nil {
		return res, err
	}

	var out *PaymentResult
	err := b.repo.WithinTx(ctx, func(tx database.Repository) error {
		inv, err := tx.LockInvoice(ctx, in.InvoiceID)
		if err != nil {
			return err
		}
		if err := checkVersion(inv.Version, in.ExpectedVersion); err != nil {
			return err
		}
		amount := billing.DefaultPaymentAmount(inv.Balance)
		if in.Amount != nil {
			amount = *in.Amount
		}
		next, err := billing.ApplyPayment(inv.Status, inv.Balance, amount)
		if err != nil {
			return err
		}

		method, err := b.ownedMethod(ctx, tx, inv.PersonID, in.PaymentMethodID)
		if err != nil {
			return err
		}
		gw, err := b.gatewayFor(ctx, tx)
		if err != nil {
			return err
		}
		charge, err := gw.Charge(ctx, gateway.ChargeRequest{
			Amount:         amount,
			Token:          method.ExternalToken,
			Customer:       method.ExternalCustomer,
			Kind:           method.Kind,
			InvoiceID:      inv.ID,
			Description:    "Invoice " + inv.InvoiceNumber,
			IdempotencyKey: in.IdempotencyKey,
		})
		if err != nil {
			b.log.Warn().Err(err).Str("invoice_id", inv.ID).Str("amount", billing.Display(amount)).Msg("charge failed")
			return err
		}

		p := &models.Payment{
			PersonID:        inv.PersonID,
			Amount:          amount,
			Method:          method.Kind,
			PaymentMethodID: &method.ID,
			GatewayRef:      charge.Reference,
			IdempotencyKey:  keyPtr(in.IdempotencyKey),
			PaidAt:          b.now(),
			Allocations:     []models.PaymentAllocation{{InvoiceID: inv.ID, Amount: amount}},
		}
		if err := b.record(ctx, tx, p, gw.Name()); err != nil {
			return err
		}
		inv.Balance, inv.Status = next.Balance, next.Status
		if err := tx.SaveInvoiceState(ctx, inv, inv.Version); err != nil {
			b.log.Error().Err(err).Str("gateway_ref", charge.Reference).Str("invoice_id", inv.ID).
				Msg("charge succeeded but invoice could not be updated")
			return err
		}
		out = &PaymentResult{Payment: p, Invoices: []*models.Invoice{inv}}
		return nil
	})
	if err != nil {
		return nil, err
	}
	b.log.Info().Str("invoice_id", in.InvoiceID).Str("payment_id", out.Payment.ID).
		Str("amount", billing.Display(out.Payment.Amount)).Msg("payment applied")
	return out, nil
}

type PayBalanceInput struct {
	PersonID        string
	InvoiceIDs      []string // empty means all open invoices
	Amount          *decimal.Decimal
	PaymentMethodID string
	IdempotencyKey  string
}

// PayBalance charges once and spreads the amount over the person's open
// invoices, oldest first.
func (b *Billing) PayBalance(ctx context.Context, in PayBalanceInput) (*PaymentResult, error) {
	if strings.TrimSpace(in.PaymentMethodID) == "" {
		return nil, ErrNoMethod
	}
	if in.Amount != nil && !in.Amount.IsPositive() {
		return nil, billing.ErrNonPositiveAmount
	}
	if res, err := b.replay(ctx, in.IdempotencyKey); res != nil || err != nil {
		return res, err
	}

	var out *PaymentResult
	err := b.repo.WithinTx(ctx, func(tx database.Repository) error {
		invoices, err := tx.LockOpenInvoices(ctx, in.PersonID, in.InvoiceIDs)
		if err != nil {
			return err
		}
		if len(invoices) == 0 {
			return ErrNothingToBill
		}
		outstanding := decimal.Zero
		for _, inv := range invoices {
			outstanding = outstanding.Add(inv.Balance)
		}
		amount := billing.DefaultPaymentAmount(outstanding)
		if in.Amount != nil {
			amount = *in.Amount
		}
		if amount.GreaterThan(outstanding) {
			return fmt.Errorf("%w: %s > %s", billing.ErrOverpayment, billing.Display(amount), billing.Display(outstanding))
		}

		allocs, touched, err := allocate(invoices, amount)
		if err != nil {
			return err
		}

		method, err := b.ownedMethod(ctx, tx, in.PersonID, in.PaymentMethodID)
		if err != nil {
			return err
		}
		gw, err := b.gatewayFor(ctx, tx)
		if err != nil {
			return err
		}
		charge, err := gw.Charge(ctx, gateway.ChargeRequest{
			Amount:         amount,
			Token:          method.ExternalToken,
			Customer:       method.ExternalCustomer,
			Kind:           method.Kind,
			Description:    fmt.Sprintf("Balance payment (%d invoices)", len(touched)),
			IdempotencyKey: in.IdempotencyKey,
		})
		if err != nil {
			b.log.Warn().Err(err).Str("person_id", in.PersonID).Str("amount", billing.Display(amount)).Msg("charge failed")
			return err
		}

		p := &models.Payment{
			PersonID:        in.PersonID,
			Amount:          amount,
			Method:          method.Kind,
			PaymentMethodID: &method.ID,
			GatewayRef:      charge.Reference,
			IdempotencyKey:  keyPtr(in.IdempotencyKey),
			PaidAt:          b.now(),
			Allocations:     allocs,
		}
		if err := b.record(ctx, tx, p, gw.Name()); err != nil {
			return err
		}
		for _, inv := range touched {
			if err := tx.SaveInvoiceState(ctx, inv, inv.Version); err != nil {
				b.log.Error().Err(err).Str("gateway_ref", charge.Reference).Str("invoice_id", inv.ID).
					Msg("charge succeeded but invoice could not be updated")
				return err
			}
		}
		out = &PaymentResult{Payment: p, Invoices: touched}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// allocate applies amount to invoices in order and returns the allocation
// rows plus the invoices whose balance changed.
func allocate(invoices []models.Invoice, amount decimal.Decimal) ([]models.PaymentAllocation, []*models.Invoice, error) {
	var (
		allocs  []models.PaymentAllocation
		touched []*models.Invoice
		left    = amount
	)
	for i := range invoices {
		if !left.IsPositive() {
			break
		}
		inv := &invoices[i]
		if !billing.IsOpen(inv.Status) {
			continue
		}
		part := decimal.Min(left, inv.Balance)
		if !part.IsPositive() {
			continue
		}
		next, err := billing.ApplyPayment(inv.Status, inv.Balance, part)
		if err != nil {
			return nil, nil, fmt.Errorf("invoice %s: %w", inv.InvoiceNumber, err)
		}
		inv.Balance, inv.Status = next.Balance, next.Status
		allocs = append(allocs, models.PaymentAllocation{InvoiceID: inv.ID, Amount: part})
		touched = append(touched, inv)
		left = left.Sub(part)
	}
	return allocs, touched, nil
}

type ManualPaymentInput struct {
	InvoiceID       string
	Amount          *decimal.Decimal
	Method          string // cash | check
	Reference       string
	Note            string
	PaidAt          *time.Time
	IdempotencyKey  string
	ExpectedVersion *int
}

// RecordManualPayment books cash or a check against an invoice without a
// gateway call.
func (b *Billing) RecordManualPayment(ctx context.Context, in ManualPaymentInput) (*PaymentResult, error) {
	if in.Method != models.MethodCash && in.Method != models.MethodCheck {
		return nil, ErrInvalidMethodKind
	}
	if in.Amount != nil && !in.Amount.IsPositive() {
		return nil, billing.ErrNonPositiveAmount
	}
	if res, err := b.replay(ctx, in.IdempotencyKey); res != nil || err != nil {
		return res, err
	}

	var out *PaymentResult
	err := b.repo.WithinTx(ctx, func(tx database.Repository) error {
		inv, err := tx.LockInvoice(ctx, in.InvoiceID)
		if err != nil {
			return err
		}
		if err := checkVersion(inv.Version, in.ExpectedVersion); err != nil {
			return err
		}
		amount := billing.DefaultPaymentAmount(inv.Balance)
		if in.Amount != nil {
			amount = *in.Amount
		}
		next, err := billing.ApplyPayment(inv.Status, inv.Balance, amount)
		if err != nil {
			return err
		}
		paidAt := b.now()
		if in.PaidAt != nil {
			paidAt = in.PaidAt.UTC()
		}
		p := &models.Payment{
			PersonID:       inv.PersonID,
			Amount:         amount,
			Method:         in.Method,
			Reference:      in.Reference,
			Note:           in.Note,
			IdempotencyKey: keyPtr(in.IdempotencyKey),
			PaidAt:         paidAt,
			Allocations:    []models.PaymentAllocation{{InvoiceID: inv.ID, Amount: amount}},
		}
		if err := tx.CreatePayment(ctx, p); err != nil {
			return fmt.Errorf("record payment: %w", err)
		}
		inv.Balance, inv.Status = next.Balance, next.Status
		if err := tx.SaveInvoiceState(ctx, inv, inv.Version); err != nil {
			return err
		}
		out = &PaymentResult{Payment: p, Invoices: []*models.Invoice{inv}}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// replay returns the payment already recorded under key, if any.
func (b *Billing) replay(ctx context.Context, key string) (*PaymentResult, error) {
	if strings.TrimSpace(key) == "" {
		return nil, nil
	}
	p, err := b.repo.FindPaymentByIdempotencyKey(ctx, key)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("idempotency lookup: %w", err)
	}
	res := &PaymentResult{Payment: p, Replayed: true}
	for _, a := range p.Allocations {
		inv, err := b.repo.GetInvoice(ctx, a.InvoiceID)
		if err != nil {
			return nil, err
		}
		res.Invoices = append(res.Invoices, inv)
	}
	b.log.Info().Str("payment_id", p.ID).Msg("idempotent replay, no charge")
	return res, nil
}

func (b *Billing) ownedMethod(ctx context.Context, repo database.Repository, personID, methodID string) (*models.PaymentMethod, error) {
	m, err := repo.GetPaymentMethod(ctx, methodID)
	if err != nil {
		return nil, fmt.Errorf("payment method: %w", err)
	}
	if m.PersonID != personID {
		return nil, ErrMethodNotOwned
	}
	return m, nil
}

// record inserts a payment for money the gateway already took. A failure
// here is logged with the gateway reference so it can be reconciled by hand.
func (b *Billing) record(ctx context.Context, repo database.Repository, p *models.Payment, processor string) error {
	if err := repo.CreatePayment(ctx, p); err != nil {
		b.log.Error().Err(err).Str("processor", processor).Str("gateway_ref", p.GatewayRef).
			Str("person_id", p.PersonID).Str("amount", billing.Display(p.Amount)).
			Msg("charge succeeded but payment could not be recorded")
		return fmt.Errorf("record payment: %w", err)
	}
	return nil
}

func keyPtr(key string) *string {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	return &key
}
