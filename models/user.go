package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	FullName  string    `json:"fullname" gorm:"not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Number    string    `json:"number" gorm:"uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"not null"`
	Role      string    `json:"role" gorm:"not null;default:'user'"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Summary is the public view of a user returned by the auth endpoints.
type Summary struct {
	ID       string `json:"id"`
	FullName string `json:"fullname"`
	Email    string `json:"email"`
	Number   string `json:"number,omitempty"`
	Role     string `json:"role,omitempty"`
}

func (u *User) Summary() Summary {
	return Summary{
		ID:       u.ID,
		FullName: u.FullName,
		Email:    u.Email,
		Number:   u.Number,
		Role:     u.Role,
	}
}
