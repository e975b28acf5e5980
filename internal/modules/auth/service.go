package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dinein/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	users   UserRepositoryInterface
	jwt     jwtService
	loggerf func(format string, args ...interface{})
}

type LoginResult struct {
	User        *domain.User
	AccessToken string
	ExpiresIn   time.Duration
}

func NewService(users UserRepositoryInterface, jwt jwtService, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{users: users, jwt: jwt, loggerf: loggerf}
}

// Login checks the staff credentials and issues an access token carrying
// the user's id and role. Unknown email and wrong password are not told
// apart.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.loggerf("level=warn msg=login failed user_id=%d", user.ID)
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &LoginResult{User: user, AccessToken: token, ExpiresIn: s.jwt.TTL()}, nil
}

func (s *Service) Me(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user %d: %w", userID, err)
	}
	return user, nil
}
