package domain

type EventType string

const (
	EventReservationCreated   EventType = "reservation.created"
	EventReservationAllotted  EventType = "reservation.allotted"
	EventReservationCancelled EventType = "reservation.cancelled"
	EventReservationExpired   EventType = "reservation.expired"
	EventOrderUpdated         EventType = "order.updated"
	EventOrderSentToKitchen   EventType = "order.sent_to_kitchen"
	EventBillGenerated        EventType = "bill.generated"
	EventBillPaid             EventType = "bill.paid"
)

// Event is pushed to floor screens whenever a reservation changes.
type Event struct {
	Type          EventType         `json:"type"`
	ReservationID int64             `json:"reservation_id"`
	TableID       *int64            `json:"table_id,omitempty"`
	Status        ReservationStatus `json:"status,omitempty"`
}
