package memory

import (
	"context"
	"sync"
	"time"

	"quizportal/models"

	"github.com/google/uuid"
)

type ContactStore struct {
	mu       sync.RWMutex
	contacts []models.Contact
}

func NewContactStore() *ContactStore {
	return &ContactStore{}
}

func (s *ContactStore) Create(_ context.Context, contact *models.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if contact.ID == "" {
		contact.ID = uuid.NewString()
	}
	if contact.CreatedAt.IsZero() {
		contact.CreatedAt = time.Now()
	}
	s.contacts = append(s.contacts, *contact)
	return nil
}

// FindAll returns every message, newest first.
func (s *ContactStore) FindAll(_ context.Context) ([]models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Contact, 0, len(s.contacts))
	for i := len(s.contacts) - 1; i >= 0; i-- {
		out = append(out, s.contacts[i])
	}
	return out, nil
}
