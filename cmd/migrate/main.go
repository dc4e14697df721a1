package main

import (
	"fmt" // Error wrapping
	"os"  // Exit code

	"shop_system/internal/config" // Configuration
	"shop_system/internal/db"     // Database connection and models

	"github.com/sirupsen/logrus" // Logging
	"github.com/spf13/cobra"     // CLI
)

// Main entry point for migration
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1) // Cobra already printed the error
	}
}

// newRootCmd builds the migrate command: one subcommand per service database
func newRootCmd() *cobra.Command {
	var dsn string
	root := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the tables of a service database",
		Long: `Create or update the tables owned by a service.

The database is taken from the same environment as the services
(DB_DRIVER, DATABASE_URL or DB_USER/DB_PASSWORD/DB_HOST/DB_PORT/DB_NAME).

Examples:
  migrate auth                       # users and roles
  migrate shop                       # shops, items and variants
  migrate shop --dsn "host=... "     # override the connection string`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&dsn, "dsn", "", "Connection string, overrides DATABASE_URL")

	for _, service := range []string{"auth", "shop"} {
		root.AddCommand(&cobra.Command{
			Use:   service,
			Short: fmt.Sprintf("Migrate the %s service tables", service),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigrate(service, dsn)
			},
		})
	}
	return root
}

func runMigrate(service, dsn string) error {
	cfg := config.LoadConfig() // Load configuration
	if dsn != "" {
		cfg.DatabaseURL = dsn
	}
	models, err := db.Models(service)
	if err != nil {
		return err
	}
	gdb, err := db.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to DB: %w", err)
	}
	defer db.Close(gdb)

	logrus.WithFields(logrus.Fields{
		"service": service,      // Target service
		"driver":  cfg.DBDriver, // Database driver
	}).Info("Running migration")
	return db.Migrate(gdb, models...)
}
