package domain

import "time"

type MenuItem struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name" gorm:"not null" validate:"required"`
	Price      float64   `json:"price" gorm:"type:decimal(10,2);not null" validate:"required,gt=0"`
	Categories []string  `json:"categories" gorm:"serializer:json;type:text" validate:"required,min=1,dive,required"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
