package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dinein/internal/domain"
	"dinein/internal/middleware"
	"dinein/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// Mock User Repository implementing the interface
type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func staffUser(t *testing.T, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.User{ID: 5, Name: "Maya", Email: "maya@dine.in", PasswordHash: string(hash), Role: domain.RoleManager}
}

func TestLogin_Success(t *testing.T) {
	repo := new(mockUserRepo)
	tokens := jwt.New("test-secret", time.Hour)
	svc := NewService(repo, tokens, t.Logf)

	user := staffUser(t, "correct horse")
	repo.On("GetByEmail", mock.Anything, "maya@dine.in").Return(user, nil)

	res, err := svc.Login(context.Background(), LoginRequest{Email: "maya@dine.in", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, user, res.User)
	assert.Equal(t, time.Hour, res.ExpiresIn)

	claims, err := tokens.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(5), claims.UserID)
	assert.Equal(t, "MANAGER", claims.Role)
	repo.AssertExpectations(t)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewService(repo, jwt.New("test-secret", time.Hour), nil)

	repo.On("GetByEmail", mock.Anything, "maya@dine.in").Return(staffUser(t, "right"), nil)
	repo.On("GetByEmail", mock.Anything, "ghost@dine.in").Return(nil, domain.ErrNotFound)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "maya@dine.in", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "ghost@dine.in", Password: "right"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_StoreFailure(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewService(repo, jwt.New("test-secret", time.Hour), nil)
	repo.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))

	_, err := svc.Login(context.Background(), LoginRequest{Email: "maya@dine.in", Password: "x"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginAndMeOverHTTP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := new(mockUserRepo)
	tokens := jwt.New("test-secret", time.Hour)
	user := staffUser(t, "pw")
	repo.On("GetByEmail", mock.Anything, "maya@dine.in").Return(user, nil)
	repo.On("GetByID", mock.Anything, int64(5)).Return(user, nil)

	h := NewHandler(NewService(repo, tokens, t.Logf))
	r := gin.New()
	v1 := r.Group("/api/v1")
	h.RegisterPublicRoutes(v1)
	protected := v1.Group("")
	protected.Use(middleware.JWTAuth(tokens))
	h.RegisterProtectedRoutes(protected)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"maya@dine.in","password":"pw"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var login struct {
		Data struct {
			AccessToken string     `json:"access_token"`
			ExpiresIn   int64      `json:"expires_in"`
			User        UserPublic `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &login))
	assert.Equal(t, int64(3600), login.Data.ExpiresIn)
	assert.Equal(t, domain.RoleManager, login.Data.User.Role)
	assert.NotContains(t, rr.Body.String(), "password")

	req = httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.Data.AccessToken)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), "maya@dine.in")

	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"maya@dine.in","password":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "INVALID_CREDENTIALS")
}
