package repository

import (
	"context"
	"strings"

	"dinein/internal/domain"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	u.Email = normalizeEmail(u.Email)
	return translate(r.db.WithContext(ctx).Create(u).Error)
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	u.Email = normalizeEmail(u.Email)
	return translate(r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", u.ID).
		Updates(map[string]interface{}{
			"name":          u.Name,
			"email":         u.Email,
			"password_hash": u.PasswordHash,
			"role":          u.Role,
		}).Error)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *UserRepository) ListByRole(ctx context.Context, role domain.UserRole) ([]domain.User, error) {
	var users []domain.User
	if err := r.db.WithContext(ctx).Where("role = ?", role).Order("name asc, id asc").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
