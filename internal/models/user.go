package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleOwner   Role = "OWNER"
)

// User is a seeded canteen account. Secret holds the bcrypt hash of the
// login secret (the PRN for students).
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"not null;size:255;uniqueIndex" json:"email"`
	FullName  string    `gorm:"not null;size:255" json:"full_name"`
	Role      Role      `gorm:"size:20;not null;default:'STUDENT'" json:"role"`
	Secret    string    `gorm:"not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
