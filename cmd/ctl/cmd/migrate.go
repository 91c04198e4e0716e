package cmd

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dropwall/dropwall/internal/config"
	"github.com/dropwall/dropwall/internal/db"
	"github.com/dropwall/dropwall/internal/logger"
	"github.com/spf13/cobra"
)

func MigrateCmd() *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	migrate.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration(cmd.Context(), db.RunMigrations)
		},
	})

	migrate.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the latest migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration(cmd.Context(), db.MigrateDown)
		},
	})

	return migrate
}

func runMigration(ctx context.Context, step func(context.Context, *sql.DB, string) error) error {
	cfg := config.Load()
	logger.Init(logger.Options{Env: cfg.AppEnv})

	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close(database)

	return step(ctx, database.DB, cfg.DBDriver)
}
