package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"quizportal/models"
	"quizportal/services"

	"github.com/google/uuid"
)

type ResultStore struct {
	mu            sync.RWMutex
	results       []models.Result
	singleAttempt bool
}

// NewResultStore returns a result store. With singleAttempt set, a second
// result for the same (user, quiz) pair is rejected with ErrConflict, like the
// unique index the gorm store creates.
func NewResultStore(singleAttempt bool) *ResultStore {
	return &ResultStore{singleAttempt: singleAttempt}
}

func (s *ResultStore) Create(_ context.Context, result *models.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.singleAttempt {
		for _, r := range s.results {
			if r.UserID == result.UserID && r.QuizID == result.QuizID {
				return services.ErrConflict
			}
		}
	}
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	if result.AttemptedAt.IsZero() {
		result.AttemptedAt = time.Now()
	}
	s.results = append(s.results, *result)
	return nil
}

func (s *ResultStore) FindOne(_ context.Context, userID, quizID string) (*models.Result, error) {
	matches := s.filter(func(r models.Result) bool {
		return r.UserID == userID && r.QuizID == quizID
	})
	if len(matches) == 0 {
		return nil, services.ErrNotFound
	}
	sortByAttempt(matches, true)
	return &matches[0], nil
}

// FindByUser returns a user's attempts, newest first.
func (s *ResultStore) FindByUser(_ context.Context, userID string) ([]models.Result, error) {
	matches := s.filter(func(r models.Result) bool { return r.UserID == userID })
	sortByAttempt(matches, false)
	return matches, nil
}

// FindByQuiz returns a quiz's attempts in submission order.
func (s *ResultStore) FindByQuiz(_ context.Context, quizID string) ([]models.Result, error) {
	matches := s.filter(func(r models.Result) bool { return r.QuizID == quizID })
	sortByAttempt(matches, true)
	return matches, nil
}

func (s *ResultStore) DeleteAll(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := int64(len(s.results))
	s.results = nil
	return n, nil
}

func (s *ResultStore) filter(match func(models.Result) bool) []models.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Result{}
	for _, r := range s.results {
		if match(r) {
			out = append(out, r)
		}
	}
	return out
}

func sortByAttempt(results []models.Result, ascending bool) {
	sort.SliceStable(results, func(i, j int) bool {
		if ascending {
			return results[i].AttemptedAt.Before(results[j].AttemptedAt)
		}
		return results[i].AttemptedAt.After(results[j].AttemptedAt)
	})
}
