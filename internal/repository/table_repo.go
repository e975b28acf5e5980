package repository

import (
	"context"
	"time"

	"dinein/internal/domain"

	"gorm.io/gorm"
)

type TableRepository struct {
	db *gorm.DB
}

func NewTableRepository(db *gorm.DB) *TableRepository {
	return &TableRepository{db: db}
}

func (r *TableRepository) Create(ctx context.Context, t *domain.Table) error {
	return translate(r.db.WithContext(ctx).Create(t).Error)
}

func (r *TableRepository) Update(ctx context.Context, t *domain.Table) error {
	return translate(r.db.WithContext(ctx).Model(&domain.Table{}).Where("id = ?", t.ID).
		Updates(map[string]interface{}{"number": t.Number, "capacity": t.Capacity}).Error)
}

func (r *TableRepository) GetByID(ctx context.Context, id int64) (*domain.Table, error) {
	var t domain.Table
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

// GetByIDForUpdate takes a row lock on engines that support one.
func (r *TableRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Table, error) {
	var t domain.Table
	if err := r.db.WithContext(ctx).Clauses(forUpdate()).First(&t, id).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *TableRepository) List(ctx context.Context) ([]domain.Table, error) {
	var tables []domain.Table
	err := r.db.WithContext(ctx).
		Preload("Reservations", func(db *gorm.DB) *gorm.DB {
			return db.Where("status = ?", domain.ReservationConfirmed).Order("booking_date asc, time_slot_start asc")
		}).
		Order("capacity asc, number asc").
		Find(&tables).Error
	if err != nil {
		return nil, err
	}
	return tables, nil
}

// ListWithConfirmedOn loads every table together with its confirmed
// reservations whose booking day falls in [from, to). With lock set the
// table rows are selected FOR UPDATE.
func (r *TableRepository) ListWithConfirmedOn(ctx context.Context, from, to time.Time, lock bool) ([]domain.Table, error) {
	q := r.db.WithContext(ctx)
	if lock {
		q = q.Clauses(forUpdate())
	}

	var tables []domain.Table
	err := q.
		Preload("Reservations", "status = ? AND booking_date >= ? AND booking_date < ?",
			domain.ReservationConfirmed, from.UTC(), to.UTC()).
		Order("capacity asc, number asc").
		Find(&tables).Error
	if err != nil {
		return nil, err
	}
	return tables, nil
}
