package cmd

import (
	"github.com/spf13/cobra"

	"shul-backend/database"
	"shul-backend/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the public schema and every shul schema",
	Example: `  # Migrate everything
  shul-backend migrate

  # Migrate one shul
  shul-backend migrate --schema shul_young_israel`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().String("schema", "", "Migrate only this shul schema")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("migrate")
	schema, _ := cmd.Flags().GetString("schema")

	if err := connect(); err != nil {
		return err
	}
	ctx := cmd.Context()
	if schema != "" {
		if err := database.MigrateTenantSchema(ctx, schema); err != nil {
			return err
		}
		log.Info().Str("schema", schema).Msg("schema migrated")
		return nil
	}
	n, err := database.MigrateAllTenants(ctx)
	if err != nil {
		return err
	}
	log.Info().Int("schemas", n).Msg("all schemas migrated")
	return nil
}
