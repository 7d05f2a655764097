package memory

import (
	"context"
	"sync"
	"time"

	"quizportal/models"
	"quizportal/services"

	"github.com/google/uuid"
)

type QuizStore struct {
	mu      sync.RWMutex
	quizzes []models.Quiz
	clock   func() time.Time
}

func NewQuizStore() *QuizStore {
	return &QuizStore{clock: time.Now}
}

func (s *QuizStore) Create(_ context.Context, quiz *models.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quiz.ID == "" {
		quiz.ID = uuid.NewString()
	}
	if quiz.CreatedAt.IsZero() {
		quiz.CreatedAt = s.clock()
	}
	s.quizzes = append(s.quizzes, cloneQuiz(*quiz))
	return nil
}

// FindAll returns every quiz, newest first.
func (s *QuizStore) FindAll(_ context.Context) ([]models.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Quiz, 0, len(s.quizzes))
	for i := len(s.quizzes) - 1; i >= 0; i-- {
		out = append(out, cloneQuiz(s.quizzes[i]))
	}
	return out, nil
}

func (s *QuizStore) FindByID(_ context.Context, id string) (*models.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, q := range s.quizzes {
		if q.ID == id {
			quiz := cloneQuiz(q)
			return &quiz, nil
		}
	}
	return nil, services.ErrNotFound
}

func (s *QuizStore) FindByIDs(_ context.Context, ids []string) ([]models.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []models.Quiz
	for _, q := range s.quizzes {
		if want[q.ID] {
			out = append(out, cloneQuiz(q))
		}
	}
	return out, nil
}

func cloneQuiz(q models.Quiz) models.Quiz {
	questions := make([]models.Question, len(q.Questions))
	for i, question := range q.Questions {
		question.Options = append([]string(nil), question.Options...)
		questions[i] = question
	}
	q.Questions = questions
	return q
}
