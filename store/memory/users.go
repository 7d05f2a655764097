// Package memory provides in-process repositories used for tests and when
// no database is configured. Data does not survive a restart.
package memory

import (
	"context"
	"sync"
	"time"

	"quizportal/models"
	"quizportal/services"

	"github.com/google/uuid"
)

type UserStore struct {
	mu    sync.RWMutex
	users map[string]models.User
	order []string
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]models.User)}
}

func (s *UserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email || existing.Number == user.Number {
			return services.ErrConflict
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now

	s.users[user.ID] = *user
	s.order = append(s.order, user.ID)
	return nil
}

func (s *UserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	return &user, nil
}

func (s *UserStore) FindByIDs(_ context.Context, ids []string) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if user, ok := s.users[id]; ok {
			out = append(out, user)
		}
	}
	return out, nil
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return s.findFirst(func(u models.User) bool { return u.Email == email })
}

func (s *UserStore) FindByNumber(_ context.Context, number string) (*models.User, error) {
	return s.findFirst(func(u models.User) bool { return u.Number == number })
}

func (s *UserStore) DeleteAll(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := int64(len(s.users))
	s.users = make(map[string]models.User)
	s.order = nil
	return n, nil
}

func (s *UserStore) findFirst(match func(models.User) bool) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.order {
		if user := s.users[id]; match(user) {
			return &user, nil
		}
	}
	return nil, services.ErrNotFound
}
