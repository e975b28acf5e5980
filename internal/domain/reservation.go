package domain

import "time"

type ReservationStatus string

const (
	ReservationConfirmed      ReservationStatus = "CONFIRMED"
	ReservationCancelled      ReservationStatus = "CANCELLED"
	ReservationCompleted      ReservationStatus = "COMPLETED"
	ReservationPendingPayment ReservationStatus = "PENDING_PAYMENT"
)

// IsTerminal reports whether no further transition is allowed.
func (s ReservationStatus) IsTerminal() bool {
	return s == ReservationCancelled || s == ReservationCompleted
}

type Reservation struct {
	ID            int64             `json:"id"`
	CustomerID    int64             `json:"customer_id" gorm:"not null;index"`
	BookingDate   time.Time         `json:"booking_date" gorm:"not null;index"`
	TimeSlotStart time.Time         `json:"time_slot_start" gorm:"not null"`
	TimeSlotEnd   time.Time         `json:"time_slot_end" gorm:"not null"`
	PartySize     int               `json:"party_size" gorm:"not null" validate:"required,gt=0"`
	Status        ReservationStatus `json:"status" gorm:"type:varchar(32);not null;index"`
	TableID       *int64            `json:"table_id,omitempty" gorm:"index"`
	WaiterID      *int64            `json:"waiter_id,omitempty" gorm:"index"`
	CancelledAt   *time.Time        `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`

	Customer *Customer `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Table    *Table    `json:"table,omitempty" gorm:"foreignKey:TableID"`
	Waiter   *User     `json:"waiter,omitempty" gorm:"foreignKey:WaiterID"`
	Order    *Order    `json:"order,omitempty" gorm:"foreignKey:ReservationID"`
	Bill     *Bill     `json:"bill,omitempty" gorm:"foreignKey:ReservationID"`
}
