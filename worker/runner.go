// Package worker runs the background jobs of every shul: outbox delivery,
// the overdue sweep and due subscription charges.
package worker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"shul-backend/database"
	"shul-backend/gateway"
	"shul-backend/logger"
	"shul-backend/notify"
	"shul-backend/services"
)

// Tenant is one shul the runner works on.
type Tenant struct {
	Schema string
	Name   string
}

// TenantLister returns the shuls to process.
type TenantLister func(ctx context.Context) ([]Tenant, error)

// TenantScope runs fn in a transaction pinned to schema.
type TenantScope func(ctx context.Context, schema string, fn func(database.Repository) error) error

type Config struct {
	Interval  time.Duration // between runs
	Timeout   time.Duration // per run, across all tenants
	BatchSize int           // outbox events and subscriptions per tenant and run
}

type Runner struct {
	tenants  TenantLister
	scope    TenantScope
	gateways gateway.Provider
	mailer   notify.Mailer
	cfg      Config
	log      zerolog.Logger
}

func New(tenants TenantLister, scope TenantScope, gateways gateway.Provider, mailer notify.Mailer, cfg Config) *Runner {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Timeout <= 0 || cfg.Timeout >= cfg.Interval {
		cfg.Timeout = cfg.Interval * 5 / 6
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	return &Runner{
		tenants:  tenants,
		scope:    scope,
		gateways: gateways,
		mailer:   mailer,
		cfg:      cfg,
		log:      logger.WithComponent("worker"),
	}
}

// Run processes all tenants once per interval until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	r.log.Info().Dur("interval", r.cfg.Interval).Msg("worker started")
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	r.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("worker stopped")
			return
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}

// Stats counts what a run did.
type Stats struct {
	Tenants  int
	Emails   int
	Overdue  int64
	Charged  int
	Failures int
}

// RunOnce works through every tenant. A failing tenant is logged and skipped.
func (r *Runner) RunOnce(ctx context.Context) Stats {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	var st Stats
	tenants, err := r.tenants(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("list tenants")
		st.Failures++
		return st
	}
	for _, t := range tenants {
		if ctx.Err() != nil {
			r.log.Warn().Msg("run deadline reached, remaining tenants wait for the next run")
			break
		}
		st.Tenants++
		r.runTenant(ctx, t, &st)
	}
	r.log.Debug().Int("tenants", st.Tenants).Int("emails", st.Emails).
		Int64("overdue", st.Overdue).Int("charged", st.Charged).Int("failures", st.Failures).
		Msg("worker run finished")
	return st
}

func (r *Runner) runTenant(ctx context.Context, t Tenant, st *Stats) {
	log := r.log.With().Str("schema", t.Schema).Logger()

	err := r.scope(ctx, t.Schema, func(repo database.Repository) error {
		sent, err := services.NewDispatcher(repo, r.mailer, t.Name).Dispatch(ctx, r.cfg.BatchSize)
		st.Emails += sent
		return err
	})
	if err != nil {
		log.Error().Err(err).Msg("outbox dispatch")
		st.Failures++
	}

	err = r.scope(ctx, t.Schema, func(repo database.Repository) error {
		n, err := services.NewBilling(repo, r.gateways).WithLogger(log).SweepOverdue(ctx)
		st.Overdue += n
		return err
	})
	if err != nil {
		log.Error().Err(err).Msg("overdue sweep")
		st.Failures++
	}

	var due []string
	err = r.scope(ctx, t.Schema, func(repo database.Repository) error {
		var err error
		due, err = services.NewBilling(repo, r.gateways).DueSubscriptions(ctx, r.cfg.BatchSize)
		return err
	})
	if err != nil {
		log.Error().Err(err).Msg("list due subscriptions")
		st.Failures++
		return
	}
	// one transaction per subscription so a failure only loses that charge
	for _, id := range due {
		var charged bool
		err := r.scope(ctx, t.Schema, func(repo database.Repository) error {
			var err error
			charged, err = services.NewBilling(repo, r.gateways).WithLogger(log).ChargeSubscription(ctx, id)
			return err
		})
		switch {
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
			return
		case err != nil:
			log.Error().Err(err).Str("subscription_id", id).Msg("charge subscription")
			st.Failures++
		case charged:
			st.Charged++
		}
	}
}
