package repository

import (
	"context"

	"dinein/internal/domain"

	"gorm.io/gorm"
)

type MenuItemRepository struct {
	db *gorm.DB
}

func NewMenuItemRepository(db *gorm.DB) *MenuItemRepository {
	return &MenuItemRepository{db: db}
}

func (r *MenuItemRepository) Create(ctx context.Context, m *domain.MenuItem) error {
	return translate(r.db.WithContext(ctx).Create(m).Error)
}

func (r *MenuItemRepository) Update(ctx context.Context, m *domain.MenuItem) error {
	return translate(r.db.WithContext(ctx).Select("name", "price", "categories", "updated_at").Save(m).Error)
}

func (r *MenuItemRepository) GetByID(ctx context.Context, id int64) (*domain.MenuItem, error) {
	var m domain.MenuItem
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (r *MenuItemRepository) List(ctx context.Context) ([]domain.MenuItem, error) {
	var items []domain.MenuItem
	if err := r.db.WithContext(ctx).Order("name asc, id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
