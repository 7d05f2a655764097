package store

import (
	"context"

	"quizportal/models"

	"gorm.io/gorm"
)

type ContactStore struct {
	db *gorm.DB
}

func NewContactStore(db *gorm.DB) *ContactStore {
	return &ContactStore{db: db}
}

func (s *ContactStore) Create(ctx context.Context, contact *models.Contact) error {
	return translate(s.db.WithContext(ctx).Create(contact).Error)
}

func (s *ContactStore) FindAll(ctx context.Context) ([]models.Contact, error) {
	var contacts []models.Contact
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&contacts).Error
	return contacts, translate(err)
}
