package main

import (
	"budget-tracker-go/internal/config"
	"budget-tracker-go/internal/db"
	"budget-tracker-go/pkg/logger"
	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the embedded database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.NewFromEnv()
			cfg, err := config.Load(log, opts.configPath)
			if err != nil {
				return err
			}
			return db.MigrateUp(cfg.DB, log)
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.NewFromEnv()
			cfg, err := config.Load(log, opts.configPath)
			if err != nil {
				return err
			}
			return db.MigrateDown(cfg.DB, steps, log)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back (0 rolls back all)")
	cmd.AddCommand(down)

	return cmd
}
