package reservation

// CreateReservationRequest takes the booking date as YYYY-MM-DD and the slot
// bounds either as HH:MM or as RFC 3339 timestamps.
type CreateReservationRequest struct {
	Name          string `json:"name" binding:"required" validate:"required"`
	Phone         string `json:"phone" binding:"required" validate:"required"`
	BookingDate   string `json:"booking_date" binding:"required" validate:"required"`
	TimeSlotStart string `json:"time_slot_start" binding:"required" validate:"required"`
	TimeSlotEnd   string `json:"time_slot_end" binding:"required" validate:"required"`
	PartySize     int    `json:"party_size" binding:"required" validate:"required,gt=0"`
}

type AllotTableRequest struct {
	TableID  int64 `json:"table_id" binding:"required" validate:"required,gt=0"`
	WaiterID int64 `json:"waiter_id" binding:"required" validate:"required,gt=0"`
}

type ListFilter struct {
	Status string `form:"status"`
	Date   string `form:"date"`
}

type FreeTablesQuery struct {
	Date          string `form:"date" binding:"required" validate:"required"`
	TimeSlotStart string `form:"start" binding:"required" validate:"required"`
	TimeSlotEnd   string `form:"end" binding:"required" validate:"required"`
	PartySize     int    `form:"party_size" binding:"required" validate:"required,gt=0"`
}

type SweepResult struct {
	Scanned int `json:"scanned"`
	Expired int `json:"expired"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}
