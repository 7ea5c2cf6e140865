package main

import (
	"context"
	"fmt"
	"time"

	"github.com/geocoder89/cohorthub/internal/config"
	"github.com/geocoder89/cohorthub/internal/db"
	"github.com/geocoder89/cohorthub/migrations"
	"github.com/spf13/cobra"
)

const defaultMigrateTimeout = time.Minute

func NewMigrateCmd() *cobra.Command {
	var (
		timeout time.Duration
		status  bool
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			if cfg.StoreDriver != config.StoreDriverPostgres {
				return fmt.Errorf("migrate needs STORE_DRIVER=postgres, got %q", cfg.StoreDriver)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			pool, err := db.NewPool(ctx, cfg.DBURL)
			if err != nil {
				return fmt.Errorf("connect postgres: %w", err)
			}
			defer pool.Close()

			sqlDB := db.SQLDB(pool)
			defer sqlDB.Close()

			if status {
				return migrations.Status(ctx, sqlDB)
			}

			if err := migrations.Up(ctx, sqlDB); err != nil {
				return err
			}

			cmd.Println("migrations applied")
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", defaultMigrateTimeout, "timeout for the whole run")
	cmd.Flags().BoolVar(&status, "status", false, "print migration status instead of applying")

	return cmd
}
