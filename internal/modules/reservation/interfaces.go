package reservation

import (
	"context"

	"dinein/internal/domain"
)

// Notifier tells the customer about their booking.
type Notifier interface {
	NotifyReservationConfirmed(ctx context.Context, customer domain.Customer, r domain.Reservation) error
	NotifyReservationCancelled(ctx context.Context, customer domain.Customer, r domain.Reservation) error
}

type EventPublisher interface {
	Publish(evt domain.Event)
}
