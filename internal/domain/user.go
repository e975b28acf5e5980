package domain

import (
	"fmt"
	"strings"
	"time"
)

type UserRole string

const (
	RoleManager UserRole = "MANAGER"
	RoleWaiter  UserRole = "WAITER"
)

// ParseRole accepts the role names case-insensitively.
func ParseRole(s string) (UserRole, error) {
	switch UserRole(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleManager:
		return RoleManager, nil
	case RoleWaiter:
		return RoleWaiter, nil
	}
	return "", fmt.Errorf("unknown role %q: %w", s, ErrValidation)
}

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name" validate:"required"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null" validate:"required,email"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         UserRole  `json:"role" gorm:"type:varchar(16);not null;index" validate:"required,oneof=MANAGER WAITER"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Actor is the authenticated staff member on whose behalf a service call runs.
type Actor struct {
	UserID int64
	Role   UserRole
}

func (a Actor) IsManager() bool {
	return a.Role == RoleManager
}

func (a Actor) IsStaff() bool {
	return a.UserID > 0 && (a.Role == RoleManager || a.Role == RoleWaiter)
}
