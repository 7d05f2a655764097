package services

import (
	"context"

	"quizportal/models"
)

// Stores return ErrNotFound for missing single records and ErrConflict when a
// unique constraint rejects a write. Implementations live in store (gorm)
// and store/memory.

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByNumber(ctx context.Context, number string) (*models.User, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type QuizRepository interface {
	Create(ctx context.Context, quiz *models.Quiz) error
	FindAll(ctx context.Context) ([]models.Quiz, error)
	FindByID(ctx context.Context, id string) (*models.Quiz, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Quiz, error)
}

type ResultRepository interface {
	Create(ctx context.Context, result *models.Result) error
	FindOne(ctx context.Context, userID, quizID string) (*models.Result, error)
	FindByUser(ctx context.Context, userID string) ([]models.Result, error)
	FindByQuiz(ctx context.Context, quizID string) ([]models.Result, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type ContactRepository interface {
	Create(ctx context.Context, contact *models.Contact) error
	FindAll(ctx context.Context) ([]models.Contact, error)
}
