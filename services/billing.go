// Package services implements the shul's billing operations on top of a
// tenant store and a payment gateway.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"shul-backend/database"
	"shul-backend/gateway"
	"shul-backend/logger"
)

var (
	ErrNoMethod          = errors.New("payment method is required")
	ErrMethodNotOwned    = errors.New("payment method does not belong to the payer")
	ErrNoProcessor       = errors.New("no payment processor configured")
	ErrNothingToBill     = errors.New("nothing to bill")
	ErrNotActive         = errors.New("subscription is not active")
	ErrInvalidFrequency  = errors.New("invalid frequency")
	ErrInvalidMethodKind = errors.New("payment method must be cash or check")
)

// Billing runs invoice, payment and subscription operations for one tenant.
type Billing struct {
	repo     database.Repository
	gateways gateway.Provider
	now      func() time.Time
	log      zerolog.Logger
}

func NewBilling(repo database.Repository, gateways gateway.Provider) *Billing {
	return &Billing{
		repo:     repo,
		gateways: gateways,
		now:      func() time.Time { return time.Now().UTC() },
		log:      logger.WithComponent("billing"),
	}
}

// WithLogger replaces the component logger, e.g. with a tenant scoped one.
func (b *Billing) WithLogger(l zerolog.Logger) *Billing {
	b.log = l
	return b
}

// gatewayFor resolves the tenant's active processor.
func (b *Billing) gatewayFor(ctx context.Context, repo database.Repository) (gateway.Gateway, error) {
	if b.gateways == nil {
		return nil, ErrNoProcessor
	}
	pc, err := repo.GetProcessorConfig(ctx)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrNoProcessor
		}
		return nil, fmt.Errorf("load processor config: %w", err)
	}
	gw, err := b.gateways.Resolve(pc)
	if err != nil {
		if errors.Is(err, gateway.ErrNotConfigured) {
			return nil, ErrNoProcessor
		}
		return nil, err
	}
	return gw, nil
}

func checkVersion(current int, expected *int) error {
	if expected != nil && *expected != current {
		return fmt.Errorf("%w: version %d, expected %d", database.ErrConflict, current, *expected)
	}
	return nil
}
