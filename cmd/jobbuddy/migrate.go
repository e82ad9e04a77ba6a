package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"jobbuddy-backend/internal/shared/config"
	"jobbuddy-backend/internal/shared/storage/db"
)

//nolint:gochecknoglobals // Cobra boilerplate
var migrateCmd = &cobra.Command{
	Use:   "migrate [up|down|status]",
	Short: "Apply, roll back or inspect database migrations",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runMigrate,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) (err error) {
	direction := "up"
	if len(args) == 1 {
		direction = args[0]
	}
	var action func(context.Context, *sql.DB) error
	switch direction {
	case "up":
		action = db.RunMigrations
	case "down":
		action = db.RollbackMigration
	case "status":
		action = db.MigrationStatus
	default:
		err = fmt.Errorf("unknown migrate direction %q", direction)
		return err
	}

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		err = errors.New("DATABASE_URL is required")
		return err
	}
	ctx := cmd.Context()
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	if err != nil {
		err = fmt.Errorf("connect database: %w", err)
		return err
	}
	defer sqlDB.Close()

	err = action(ctx, sqlDB)
	return err
}
