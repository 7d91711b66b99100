package main

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	dbadapter "sailclub/internal/adapter/db"
	"sailclub/internal/config"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(config.LoadConfig(), func(db *sqlx.DB) error {
				return dbadapter.MigrateDown(db, steps)
			})
		},
	}
	down.Flags().IntVarP(&steps, "steps", "n", 1, "number of migrations to roll back")

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(config.LoadConfig(), dbadapter.MigrateUp)
		},
	})
	cmd.AddCommand(down)
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(config.LoadConfig(), func(db *sqlx.DB) error {
				status, err := dbadapter.GetMigrationStatus(db)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version: %d dirty: %t\n", status.CurrentVersion, status.Dirty)
				return nil
			})
		},
	})
	return cmd
}

func withDatabase(cfg *config.Config, fn func(db *sqlx.DB) error) error {
	db, err := dbadapter.ConnectDB(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to mysql: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			zap.L().Warn("failed to close mysql connection", zap.Error(err))
		}
	}()
	return fn(db)
}
