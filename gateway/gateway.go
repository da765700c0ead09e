// Package gateway talks to the card processors a shul can be configured
// with. Card entry happens in the processor's hosted fields; this package only
// ever sees reusable tokens.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"shul-backend/models"
	"shul-backend/utils"
)

var (
	ErrUnsupportedProcessor = errors.New("unsupported payment processor")
	ErrNotConfigured        = errors.New("payment processor is not configured")
)

// ChargeRequest charges a stored token.
type ChargeRequest struct {
	Amount         decimal.Decimal
	Token          string
	Customer       string // processor-side customer, required by Stripe
	Kind           string // card | ach
	InvoiceID      string
	Description    string
	IdempotencyKey string
}

type ChargeResult struct {
	Reference string
	AuthCode  string
}

// SaveMethodRequest turns a single-use token from the hosted fields into a
// reusable one.
type SaveMethodRequest struct {
	Token    string
	Kind     string
	Email    string
	Name     string
	ExpMonth int
	ExpYear  int
}

type SavedMethod struct {
	Token    string
	Customer string
	Brand    string
	Last4    string
}

// Gateway is a payment processor.
type Gateway interface {
	Name() string
	Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error)
	SaveMethod(ctx context.Context, req SaveMethodRequest) (SavedMethod, error)
}

// DeclineError is a charge the processor refused. Message is safe to show to
// the user.
type DeclineError struct {
	Processor string
	Code      string
	Message   string
}

func (e *DeclineError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s declined (%s): %s", e.Processor, e.Code, e.Message)
	}
	return fmt.Sprintf("%s declined: %s", e.Processor, e.Message)
}

// Provider picks the gateway for a processor configuration.
type Provider interface {
	Resolve(pc *models.ProcessorConfig) (Gateway, error)
}

// Resolver builds the gateway for a shul's active processor configuration.
type Resolver struct {
	Key    *[32]byte
	Client *http.Client

	// Base URL overrides, used by tests.
	CardknoxURL string
	StripeURL   string
}

var _ Provider = (*Resolver)(nil)

func NewResolver(key *[32]byte, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Resolver{Key: key, Client: &http.Client{Timeout: timeout}}
}

// Resolve opens the sealed API key and returns the matching client.
func (r *Resolver) Resolve(pc *models.ProcessorConfig) (Gateway, error) {
	if pc == nil || !pc.Active {
		return nil, ErrNotConfigured
	}
	if r.Key == nil {
		return nil, fmt.Errorf("%w: server secret key missing", ErrNotConfigured)
	}
	apiKey, err := utils.Open(r.Key, pc.APIKeySealed)
	if err != nil {
		return nil, fmt.Errorf("open processor key: %w", err)
	}
	switch pc.Processor {
	case models.ProcessorCardknox:
		return NewCardknox(r.Client, string(apiKey), r.CardknoxURL), nil
	case models.ProcessorStripe:
		return NewStripe(r.Client, string(apiKey), r.StripeURL), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedProcessor, pc.Processor)
}
