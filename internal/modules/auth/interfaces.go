package auth

import (
	"context"
	"time"

	"dinein/internal/domain"
)

// UserRepositoryInterface is the part of the user store login needs.
type UserRepositoryInterface interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type jwtService interface {
	GenerateToken(userID int64, role string) (string, error)
	TTL() time.Duration
}
