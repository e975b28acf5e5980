package domain

import "time"

type Order struct {
	ID            int64       `json:"id"`
	ReservationID int64       `json:"reservation_id" gorm:"uniqueIndex;not null"`
	Items         []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// Subtotal sums the captured line amounts.
func (o *Order) Subtotal() float64 {
	var sum float64
	for _, it := range o.Items {
		sum += it.Amount
	}
	return Round2(sum)
}

type OrderItem struct {
	ID            int64     `json:"id"`
	OrderID       int64     `json:"order_id" gorm:"not null;index"`
	MenuItemID    int64     `json:"menu_item_id" gorm:"not null;index"`
	Quantity      int       `json:"quantity" gorm:"not null"`
	Amount        float64   `json:"amount" gorm:"type:decimal(10,2);not null"`
	SentToKitchen bool      `json:"sent_to_kitchen" gorm:"not null;default:false"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	MenuItem *MenuItem `json:"menu_item,omitempty" gorm:"foreignKey:MenuItemID"`
}
