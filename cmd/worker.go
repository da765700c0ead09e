package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"shul-backend/database"
	"shul-backend/gateway"
	"shul-backend/logger"
	"shul-backend/notify"
	"shul-backend/utils"
	"shul-backend/worker"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Deliver invoice emails, mark overdue invoices and charge due subscriptions",
	Example: `  # Run continuously
  shul-backend worker

  # Single pass, e.g. from cron
  shul-backend worker --once`,
	RunE: runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)

	workerCmd.Flags().Bool("once", false, "Process every shul once and exit")
	workerCmd.Flags().Int("batch-size", 50, "Outbox events and subscriptions per shul and run")
}

func runWorker(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("worker")
	once, _ := cmd.Flags().GetBool("once")
	batch, _ := cmd.Flags().GetInt("batch-size")

	if err := connect(); err != nil {
		return err
	}

	var key *[32]byte
	if cfg.SecretKey != "" {
		k, err := utils.SealKey(cfg.SecretKey)
		if err != nil {
			return err
		}
		key = k
	}

	var mailer notify.Mailer
	if cfg.SMTPHost != "" {
		mailer = notify.NewSMTPMailer(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
	} else {
		log.Warn().Msg("SMTP_HOST not set, invoice emails are only logged")
		mailer = notify.NewLogMailer()
	}

	runner := worker.New(listTenants, inTenant, gateway.NewResolver(key, cfg.GatewayTimeout), mailer, worker.Config{
		Interval:  cfg.WorkerInterval,
		Timeout:   cfg.WorkerTimeout,
		BatchSize: batch,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if once {
		st := runner.RunOnce(ctx)
		log.Info().Int("tenants", st.Tenants).Int("emails", st.Emails).Int64("overdue", st.Overdue).
			Int("charged", st.Charged).Int("failures", st.Failures).Msg("worker pass done")
		return nil
	}
	runner.Run(ctx)
	return nil
}

func listTenants(ctx context.Context) ([]worker.Tenant, error) {
	shuls, err := database.Tenants(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]worker.Tenant, len(shuls))
	for i, s := range shuls {
		out[i] = worker.Tenant{Schema: s.SchemaName, Name: s.Name}
	}
	return out, nil
}

func inTenant(ctx context.Context, schema string, fn func(database.Repository) error) error {
	return database.InTenant(ctx, schema, func(s *database.Store) error {
		return fn(s)
	})
}
