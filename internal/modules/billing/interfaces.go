package billing

import "dinein/internal/domain"

type EventPublisher interface {
	Publish(evt domain.Event)
}
