package store

import (
	"context"

	"quizportal/models"

	"gorm.io/gorm"
)

type ResultStore struct {
	db *gorm.DB
}

func NewResultStore(db *gorm.DB) *ResultStore {
	return &ResultStore{db: db}
}

func (s *ResultStore) Create(ctx context.Context, result *models.Result) error {
	return translate(s.db.WithContext(ctx).Create(result).Error)
}

// FindOne returns the earliest attempt of userID on quizID.
func (s *ResultStore) FindOne(ctx context.Context, userID, quizID string) (*models.Result, error) {
	var result models.Result
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("attempted_at ASC").
		First(&result).Error
	if err != nil {
		return nil, translate(err)
	}
	return &result, nil
}

// FindByUser returns a user's attempts, newest first.
func (s *ResultStore) FindByUser(ctx context.Context, userID string) ([]models.Result, error) {
	var results []models.Result
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("attempted_at DESC").
		Find(&results).Error
	return results, translate(err)
}

// FindByQuiz returns a quiz's attempts in submission order.
func (s *ResultStore) FindByQuiz(ctx context.Context, quizID string) ([]models.Result, error) {
	var results []models.Result
	err := s.db.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Order("attempted_at ASC").
		Find(&results).Error
	return results, translate(err)
}

func (s *ResultStore) DeleteAll(ctx context.Context) (int64, error) {
	n, err := deleteAll(s.db.WithContext(ctx), &models.Result{})
	return n, translate(err)
}
