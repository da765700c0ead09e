package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shul-backend/config"
	"shul-backend/database"
	"shul-backend/logger"
)

var version = "1.0.0"

// cfg is loaded once before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "shul-backend",
	Short: "Shul administration API: members, invoices, payments and donations",
	Long: `shul-backend serves the shul administration API and runs its
background jobs. Every shul lives in its own PostgreSQL schema.

Configuration comes from the environment (or a .env file):
  DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME   - PostgreSQL
  JWT_SECRET_KEY                                    - token signing
  SECRET_KEY                                        - 32 byte hex key sealing processor API keys
  SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASSWORD    - invoice email delivery
  REDIS_URL                                         - shared rate limiter storage (optional)`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return err
		}
		if err := logger.Setup(c.GetLoggerConfig()); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		cfg = c
		return nil
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

// connect opens the database pool and migrates the public schema.
func connect() error {
	if err := database.Connect(cfg); err != nil {
		return err
	}
	return database.AutoMigrate()
}
