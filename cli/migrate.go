package cli

import (
	"errors"
	"log"

	"quizportal/config"
	"quizportal/store"

	"github.com/spf13/cobra"
)

// NewMigrateCmd creates or updates the database schema.
func NewMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(*configPath)
		},
	}
}

func runMigrations(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL not configured")
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	if err := store.Migrate(db, store.MigrateOptions{SingleAttempt: cfg.Quiz.SingleAttempt}); err != nil {
		return err
	}
	log.Printf("migrations applied")
	return nil
}
