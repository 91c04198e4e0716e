package cmd

import (
	"fmt"

	"github.com/dropwall/dropwall/internal/app"
	"github.com/dropwall/dropwall/internal/config"
	"github.com/dropwall/dropwall/internal/logger"
	"github.com/spf13/cobra"
)

// SweepCmd runs one expiry pass: expired file rows and their objects, then
// expired sessions.
func SweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete expired files and sessions once",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Sweeper.SweepExpired(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "expired files: %d (objects removed %d, failed %d), sessions: %d\n",
				res.Files, res.Removed, res.Failed, res.Sessions)
			return nil
		},
	}
}

func ReconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Delete stored objects that no file record points to",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Sweeper.Reconcile(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "scanned %d objects, %d orphans, %d removed\n",
				res.Scanned, res.Orphans, res.Removed)
			return nil
		},
	}
}

func open(cmd *cobra.Command) (*app.App, error) {
	cfg := config.Load()
	logger.Init(logger.Options{Env: cfg.AppEnv, SentryDSN: cfg.SentryDSN})

	a, err := app.New(cmd.Context(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize app: %w", err)
	}
	return a, nil
}
