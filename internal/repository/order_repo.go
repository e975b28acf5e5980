package repository

import (
	"context"

	"dinein/internal/domain"

	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	return translate(r.db.WithContext(ctx).Omit("Items").Create(o).Error)
}

// GetByReservation returns the order with its lines in insertion order.
func (r *OrderRepository) GetByReservation(ctx context.Context, reservationID int64) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("Items.MenuItem").
		Where("reservation_id = ?", reservationID).
		First(&o).Error
	if err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (r *OrderRepository) AddItem(ctx context.Context, item *domain.OrderItem) error {
	return translate(r.db.WithContext(ctx).Omit("MenuItem").Create(item).Error)
}

func (r *OrderRepository) UpdateItem(ctx context.Context, item *domain.OrderItem) error {
	return r.db.WithContext(ctx).Model(&domain.OrderItem{}).Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"quantity":        item.Quantity,
			"amount":          item.Amount,
			"sent_to_kitchen": item.SentToKitchen,
		}).Error
}

func (r *OrderRepository) DeleteItem(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&domain.OrderItem{}, id).Error
}

func (r *OrderRepository) MarkAllSent(ctx context.Context, orderID int64) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.OrderItem{}).Where("order_id = ?", orderID).
		Update("sent_to_kitchen", true)
	return res.RowsAffected, res.Error
}
