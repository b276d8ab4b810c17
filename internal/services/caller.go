package services

import (
	"github.com/google/uuid"

	"github.com/vitcanteen/canteen-backend/internal/models"
)

// Caller is the identity a request acts as. The zero value is anonymous.
type Caller struct {
	UserID uuid.UUID
	Email  string
	Role   models.Role
}

func (c Caller) IsOwner() bool {
	return c.Role == models.RoleOwner
}

func (c Caller) IsAnonymous() bool {
	return c.UserID == uuid.Nil && c.Role == ""
}
