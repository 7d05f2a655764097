// Package store holds the gorm-backed repositories used when a database is
// configured.
package store

import (
	"errors"
	"fmt"

	"quizportal/models"
	"quizportal/services"

	"gorm.io/gorm"
)

const resultAttemptIndex = "idx_results_user_quiz"

type MigrateOptions struct {
	// SingleAttempt adds a unique index on results (user_id, quiz_id).
	SingleAttempt bool
}

// Migrate creates or updates every table the service uses.
func Migrate(db *gorm.DB, opts MigrateOptions) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Quiz{},
		&models.Result{},
		&models.Contact{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	stmt := fmt.Sprintf("DROP INDEX IF EXISTS %s", resultAttemptIndex)
	if opts.SingleAttempt {
		stmt = fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS %s ON results (user_id, quiz_id)", resultAttemptIndex)
	}
	if err := db.Exec(stmt).Error; err != nil {
		return fmt.Errorf("result attempt index: %w", err)
	}
	return nil
}

// translate maps gorm errors onto the service error kinds. The db must be
// opened with TranslateError so duplicate keys surface as gorm.ErrDuplicatedKey.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return services.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", services.ErrConflict, err)
	}
	return err
}

func deleteAll(tx *gorm.DB, model any) (int64, error) {
	res := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
