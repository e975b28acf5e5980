package repository

import (
	"context"
	"time"

	"dinein/internal/domain"

	"gorm.io/gorm"
)

type ReservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

type ReservationFilter struct {
	Status  domain.ReservationStatus
	DayFrom *time.Time
	DayTo   *time.Time
}

func (r *ReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	return translate(r.db.WithContext(ctx).Omit("Customer", "Table", "Waiter", "Order", "Bill").Create(res).Error)
}

func (r *ReservationRepository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	var res domain.Reservation
	if err := r.db.WithContext(ctx).First(&res, id).Error; err != nil {
		return nil, translate(err)
	}
	return &res, nil
}

func (r *ReservationRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Reservation, error) {
	var res domain.Reservation
	if err := r.db.WithContext(ctx).Clauses(forUpdate()).First(&res, id).Error; err != nil {
		return nil, translate(err)
	}
	return &res, nil
}

// GetDetailed returns the reservation with customer, table, waiter, order
// lines and bill loaded.
func (r *ReservationRepository) GetDetailed(ctx context.Context, id int64) (*domain.Reservation, error) {
	var res domain.Reservation
	if err := preloadAggregate(r.db.WithContext(ctx)).First(&res, id).Error; err != nil {
		return nil, translate(err)
	}
	return &res, nil
}

func (r *ReservationRepository) List(ctx context.Context, f ReservationFilter) ([]domain.Reservation, error) {
	q := preloadAggregate(r.db.WithContext(ctx))
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.DayFrom != nil {
		q = q.Where("booking_date >= ?", f.DayFrom.UTC())
	}
	if f.DayTo != nil {
		q = q.Where("booking_date < ?", f.DayTo.UTC())
	}

	var out []domain.Reservation
	if err := q.Order("status desc, booking_date asc, time_slot_start asc, id asc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListConfirmedForTable returns the confirmed reservations holding tableID on
// the day [from, to), leaving out excludeID.
func (r *ReservationRepository) ListConfirmedForTable(ctx context.Context, tableID int64, from, to time.Time, excludeID int64) ([]domain.Reservation, error) {
	var out []domain.Reservation
	err := r.db.WithContext(ctx).
		Where("table_id = ? AND status = ? AND booking_date >= ? AND booking_date < ? AND id <> ?",
			tableID, domain.ReservationConfirmed, from.UTC(), to.UTC(), excludeID).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListExpiryCandidates returns confirmed reservations with no table and no
// bill whose booking day starts before the given instant.
func (r *ReservationRepository) ListExpiryCandidates(ctx context.Context, before time.Time) ([]domain.Reservation, error) {
	var out []domain.Reservation
	err := r.db.WithContext(ctx).
		Where("status = ? AND table_id IS NULL AND booking_date < ?", domain.ReservationConfirmed, before.UTC()).
		Where("NOT EXISTS (SELECT 1 FROM bills WHERE bills.reservation_id = reservations.id)").
		Order("booking_date asc, id asc").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ReservationRepository) Assign(ctx context.Context, id, tableID, waiterID int64) error {
	return r.db.WithContext(ctx).Model(&domain.Reservation{}).Where("id = ?", id).
		Updates(map[string]interface{}{"table_id": tableID, "waiter_id": waiterID}).Error
}

func (r *ReservationRepository) SetStatus(ctx context.Context, id int64, status domain.ReservationStatus) error {
	return r.db.WithContext(ctx).Model(&domain.Reservation{}).Where("id = ?", id).
		Update("status", status).Error
}

// Cancel releases the table and the waiter. The order and the bill stay.
func (r *ReservationRepository) Cancel(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.Reservation{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       domain.ReservationCancelled,
			"table_id":     nil,
			"waiter_id":    nil,
			"cancelled_at": at.UTC(),
		}).Error
}

func preloadAggregate(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Customer").
		Preload("Table").
		Preload("Waiter").
		Preload("Order").
		Preload("Order.Items", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("Order.Items.MenuItem").
		Preload("Bill")
}

// Expire cancels the reservation only while it is still confirmed, tableless
// and billless. It reports whether a row changed.
func (r *ReservationRepository) Expire(ctx context.Context, id int64, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Reservation{}).
		Where("id = ? AND status = ? AND table_id IS NULL", id, domain.ReservationConfirmed).
		Where("NOT EXISTS (SELECT 1 FROM bills WHERE bills.reservation_id = reservations.id)").
		Updates(map[string]interface{}{
			"status":       domain.ReservationCancelled,
			"waiter_id":    nil,
			"cancelled_at": at.UTC(),
		})
	return res.RowsAffected > 0, res.Error
}
