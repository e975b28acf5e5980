package repository

import (
	"context"

	"dinein/internal/domain"

	"gorm.io/gorm"
)

type BillRepository struct {
	db *gorm.DB
}

func NewBillRepository(db *gorm.DB) *BillRepository {
	return &BillRepository{db: db}
}

// Create fails with ErrDuplicate when the reservation already has a bill.
func (r *BillRepository) Create(ctx context.Context, b *domain.Bill) error {
	return translate(r.db.WithContext(ctx).Create(b).Error)
}

func (r *BillRepository) GetByReservation(ctx context.Context, reservationID int64) (*domain.Bill, error) {
	var b domain.Bill
	if err := r.db.WithContext(ctx).Where("reservation_id = ?", reservationID).First(&b).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *BillRepository) GetByReservationForUpdate(ctx context.Context, reservationID int64) (*domain.Bill, error) {
	var b domain.Bill
	if err := r.db.WithContext(ctx).Clauses(forUpdate()).Where("reservation_id = ?", reservationID).First(&b).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *BillRepository) ExistsForReservation(ctx context.Context, reservationID int64) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Bill{}).Where("reservation_id = ?", reservationID).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// ApplyPayment writes the mutable payment fields only.
func (r *BillRepository) ApplyPayment(ctx context.Context, b *domain.Bill) error {
	return r.db.WithContext(ctx).Model(&domain.Bill{}).Where("id = ?", b.ID).
		Updates(map[string]interface{}{
			"amount_paid":    b.AmountPaid,
			"payment_method": b.PaymentMethod,
			"payment_status": b.PaymentStatus,
			"paid_at":        b.PaidAt,
		}).Error
}
