package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"quizportal/models"
)

type QuizService struct {
	quizzes QuizRepository
}

func NewQuizService(quizzes QuizRepository) *QuizService {
	return &QuizService{quizzes: quizzes}
}

type CreateQuizRequest struct {
	Title     string                  `json:"title" binding:"required"`
	Questions []CreateQuestionRequest `json:"questions" binding:"required,min=1,dive"`
}

type CreateQuestionRequest struct {
	QuestionText  string   `json:"questionText" binding:"required"`
	Options       []string `json:"options" binding:"required,min=1,dive,required"`
	CorrectAnswer string   `json:"correctAnswer" binding:"required"`
}

func (s *QuizService) Create(ctx context.Context, req CreateQuizRequest) (*models.Quiz, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := validateStruct(&req); err != nil {
		return nil, err
	}
	if err := ValidateQuestions(req.Questions); err != nil {
		return nil, err
	}

	quiz := &models.Quiz{
		Title:     req.Title,
		Questions: make([]models.Question, 0, len(req.Questions)),
	}
	for _, q := range req.Questions {
		quiz.Questions = append(quiz.Questions, models.Question{
			QuestionText:  strings.TrimSpace(q.QuestionText),
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
		})
	}

	if err := s.quizzes.Create(ctx, quiz); err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}
	return quiz, nil
}

// ValidateQuestions checks that every question lists its correct answer among
// the options.
func ValidateQuestions(questions []CreateQuestionRequest) error {
	for i, q := range questions {
		found := false
		for _, opt := range q.Options {
			if opt == q.CorrectAnswer {
				found = true
				break
			}
		}
		if !found {
			return Errorf(ErrValidation, "question %d: correctAnswer must be one of the options.", i+1)
		}
	}
	return nil
}

func (s *QuizService) FindAll(ctx context.Context) ([]models.Quiz, error) {
	quizzes, err := s.quizzes.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	return quizzes, nil
}

func (s *QuizService) FindByID(ctx context.Context, id string) (*models.Quiz, error) {
	if !isID(id) {
		return nil, Errorf(ErrNotFound, "Quiz not found")
	}
	quiz, err := s.quizzes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, Errorf(ErrNotFound, "Quiz not found")
		}
		return nil, fmt.Errorf("get quiz %s: %w", id, err)
	}
	return quiz, nil
}
