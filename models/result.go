package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Result is one scored attempt by one user on one quiz. UserID and QuizID are
// not foreign keys: a result may reference a quiz or user that does not exist.
type Result struct {
	ID          string    `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      string    `json:"userId" gorm:"type:uuid;not null;index"`
	QuizID      string    `json:"quizId" gorm:"type:uuid;not null;index"`
	Score       float64   `json:"score" gorm:"not null;default:0"`
	TimeTaken   float64   `json:"timeTaken" gorm:"not null;default:0"` // seconds
	AttemptedAt time.Time `json:"attemptedAt" gorm:"not null;index"`
}

func (r *Result) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.AttemptedAt.IsZero() {
		r.AttemptedAt = time.Now()
	}
	return nil
}
