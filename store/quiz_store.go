package store

import (
	"context"

	"quizportal/models"

	"gorm.io/gorm"
)

type QuizStore struct {
	db *gorm.DB
}

func NewQuizStore(db *gorm.DB) *QuizStore {
	return &QuizStore{db: db}
}

func (s *QuizStore) Create(ctx context.Context, quiz *models.Quiz) error {
	return translate(s.db.WithContext(ctx).Create(quiz).Error)
}

// FindAll returns every quiz, newest first.
func (s *QuizStore) FindAll(ctx context.Context) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&quizzes).Error
	return quizzes, translate(err)
}

func (s *QuizStore) FindByID(ctx context.Context, id string) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := s.db.WithContext(ctx).First(&quiz, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &quiz, nil
}

func (s *QuizStore) FindByIDs(ctx context.Context, ids []string) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	if len(ids) == 0 {
		return quizzes, nil
	}
	err := s.db.WithContext(ctx).Select("id", "title", "created_at").Where("id IN ?", ids).Find(&quizzes).Error
	return quizzes, translate(err)
}
