package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"aquascope/internal/scheduler"
	"aquascope/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Open runs migrations as a side effect.
		st, err := store.Open(cfg.Database.Path, logger.Named("store"))
		if err != nil {
			return err
		}
		defer st.Close()
		logger.Info("database ready", zap.String("path", cfg.Database.Path))
		return nil
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the consumable/reminder sweep once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(cfg.Database.Path, logger.Named("store"))
		if err != nil {
			return err
		}
		defer st.Close()
		sweep, err := scheduler.New(st, nil, logger.Named("sweep"), cfg.Scheduler.SweepSpec)
		if err != nil {
			return err
		}
		return sweep.Sweep(cmd.Context())
	},
}
