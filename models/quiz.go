package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Question is stored inline in the quiz row as part of a jsonb document.
type Question struct {
	QuestionText  string   `json:"questionText"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

type Quiz struct {
	ID        string                        `json:"id" gorm:"type:uuid;primaryKey"`
	Title     string                        `json:"title" gorm:"not null"`
	Questions datatypes.JSONSlice[Question] `json:"questions" gorm:"type:jsonb;not null"`
	CreatedAt time.Time                     `json:"createdAt"`
}

func (q *Quiz) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}
