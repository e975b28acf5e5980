package domain

import "time"

type Table struct {
	ID        int64     `json:"id"`
	Number    string    `json:"number" gorm:"uniqueIndex;not null" validate:"required"`
	Capacity  int       `json:"capacity" gorm:"not null" validate:"required,gt=0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Reservations []Reservation `json:"reservations,omitempty" gorm:"foreignKey:TableID"`
}

type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name" gorm:"not null" validate:"required"`
	Phone     string    `json:"phone" gorm:"not null" validate:"required"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
