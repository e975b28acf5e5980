package reservation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dinein/internal/config"
	"dinein/internal/domain"
	"dinein/internal/modules/availability"
	"dinein/internal/pkg/validator"
	"dinein/internal/repository"
)

const dateLayout = "2006-01-02"

type Service struct {
	store    *repository.Store
	cfg      config.Engine
	notifier Notifier
	events   EventPublisher
	loggerf  func(format string, args ...interface{})
	now      func() time.Time
}

func NewService(store *repository.Store, cfg config.Engine, notifier Notifier, events EventPublisher, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		store:    store,
		cfg:      cfg,
		notifier: notifier,
		events:   events,
		loggerf:  loggerf,
		now:      time.Now,
	}
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create books a slot for a walk-in or online customer. With direct
// allotment enabled the smallest free table is bound in the same transaction.
func (s *Service) Create(ctx context.Context, req CreateReservationRequest) (*domain.Reservation, error) {
	if err := validator.Struct(req); err != nil {
		return nil, err
	}

	day, w, err := s.parseSlot(req.BookingDate, req.TimeSlotStart, req.TimeSlotEnd)
	if err != nil {
		return nil, err
	}
	if err := availability.ValidateWindow(s.cfg, day, w, s.now()); err != nil {
		return nil, err
	}

	customer := &domain.Customer{
		Name:  strings.TrimSpace(req.Name),
		Phone: strings.TrimSpace(req.Phone),
	}
	res := &domain.Reservation{
		BookingDate:   day.UTC(),
		TimeSlotStart: w.Start.UTC(),
		TimeSlotEnd:   w.End.UTC(),
		PartySize:     req.PartySize,
		Status:        domain.ReservationConfirmed,
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if s.cfg.AllotTableDirectly {
			tables, err := tx.Tables.ListWithConfirmedOn(ctx, day, day.AddDate(0, 0, 1), true)
			if err != nil {
				return fmt.Errorf("load tables: %w", err)
			}
			free := availability.FindFreeTables(tables, day, w, req.PartySize, s.cfg.Overlap)
			if len(free) == 0 {
				return domain.ErrNoTableAvailable
			}
			tableID := free[0].ID
			res.TableID = &tableID
		}

		if err := tx.Customers.Create(ctx, customer); err != nil {
			return fmt.Errorf("create customer: %w", err)
		}
		res.CustomerID = customer.ID
		if err := tx.Reservations.Create(ctx, res); err != nil {
			return fmt.Errorf("create reservation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	res.Customer = customer

	s.loggerf("level=info msg=reservation created reservation_id=%d table_id=%s party_size=%d day=%s",
		res.ID, formatID(res.TableID), res.PartySize, day.Format(dateLayout))
	s.notifyConfirmed(ctx, *customer, *res)
	s.publish(domain.EventReservationCreated, res)

	return res, nil
}

// AllotTable binds a table and a waiter to a confirmed reservation. The
// availability check runs again inside the binding transaction.
func (s *Service) AllotTable(ctx context.Context, actor domain.Actor, reservationID int64, req AllotTableRequest) (*domain.Reservation, error) {
	if !actor.IsStaff() {
		return nil, domain.ErrForbidden
	}
	if err := validator.Struct(req); err != nil {
		return nil, err
	}

	loc := s.cfg.Loc()
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		res, err := tx.Reservations.GetByIDForUpdate(ctx, reservationID)
		if err != nil {
			return fmt.Errorf("reservation %d: %w", reservationID, err)
		}
		if res.Status != domain.ReservationConfirmed {
			return fmt.Errorf("allot table on %s reservation: %w", res.Status, domain.ErrInvalidTransition)
		}

		table, err := tx.Tables.GetByIDForUpdate(ctx, req.TableID)
		if err != nil {
			return fmt.Errorf("table %d: %w", req.TableID, err)
		}

		waiter, err := tx.Users.GetByID(ctx, req.WaiterID)
		if err != nil {
			return fmt.Errorf("waiter %d: %w", req.WaiterID, err)
		}
		if waiter.Role != domain.RoleWaiter {
			return domain.NewValidationError("waiter_id", "must reference a waiter")
		}

		day := availability.StartOfDay(res.BookingDate, loc)
		others, err := tx.Reservations.ListConfirmedForTable(ctx, table.ID, day, day.AddDate(0, 0, 1), res.ID)
		if err != nil {
			return fmt.Errorf("load table reservations: %w", err)
		}
		w := availability.Window{Start: res.TimeSlotStart, End: res.TimeSlotEnd}
		if !availability.IsTableFree(*table, others, day, w, res.PartySize, s.cfg.Overlap) {
			return domain.ErrNoTableAvailable
		}

		return tx.Reservations.Assign(ctx, res.ID, table.ID, waiter.ID)
	})
	if err != nil {
		return nil, err
	}

	res, err := s.store.Reservations.GetDetailed(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	s.loggerf("level=info msg=table allotted reservation_id=%d table_id=%d waiter_id=%d actor_id=%d",
		res.ID, req.TableID, req.WaiterID, actor.UserID)
	s.publish(domain.EventReservationAllotted, res)

	return res, nil
}

// Cancel releases the table and waiter. Cancelling twice is a no-op; a
// completed reservation cannot be cancelled.
func (s *Service) Cancel(ctx context.Context, actor domain.Actor, reservationID int64) (*domain.Reservation, error) {
	if !actor.IsStaff() {
		return nil, domain.ErrForbidden
	}

	changed := false
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		res, err := tx.Reservations.GetByIDForUpdate(ctx, reservationID)
		if err != nil {
			return fmt.Errorf("reservation %d: %w", reservationID, err)
		}

		switch res.Status {
		case domain.ReservationCancelled:
			return nil
		case domain.ReservationCompleted:
			return fmt.Errorf("cancel completed reservation: %w", domain.ErrInvalidTransition)
		}

		changed = true
		return tx.Reservations.Cancel(ctx, res.ID, s.now())
	})
	if err != nil {
		return nil, err
	}

	res, err := s.store.Reservations.GetDetailed(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	if changed {
		s.loggerf("level=info msg=reservation cancelled reservation_id=%d actor_id=%d", res.ID, actor.UserID)
		if res.Customer != nil {
			s.notifyCancelled(ctx, *res.Customer, *res)
		}
		s.publish(domain.EventReservationCancelled, res)
	}

	return res, nil
}

// ExpireStale cancels confirmed reservations nobody seated: anything from a
// previous day, and today's once the slot ended more than the buffer ago.
// A failure on one reservation is logged and the sweep carries on.
func (s *Service) ExpireStale(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	loc := s.cfg.Loc()
	now := s.now().In(loc)
	today := availability.StartOfDay(now, loc)

	candidates, err := s.store.Reservations.ListExpiryCandidates(ctx, today.AddDate(0, 0, 1))
	if err != nil {
		return result, fmt.Errorf("list expiry candidates: %w", err)
	}
	result.Scanned = len(candidates)

	for i := range candidates {
		r := &candidates[i]
		if !s.isStale(r, today, now) {
			result.Skipped++
			continue
		}

		ok, err := s.store.Reservations.Expire(ctx, r.ID, now)
		if err != nil {
			result.Failed++
			s.loggerf("level=error msg=expire reservation failed reservation_id=%d err=%v", r.ID, err)
			continue
		}
		if !ok {
			result.Skipped++
			continue
		}

		result.Expired++
		r.Status = domain.ReservationCancelled
		s.publish(domain.EventReservationExpired, r)
	}

	if result.Expired > 0 || result.Failed > 0 {
		s.loggerf("level=info msg=expire sweep done scanned=%d expired=%d skipped=%d failed=%d",
			result.Scanned, result.Expired, result.Skipped, result.Failed)
	}
	return result, nil
}

func (s *Service) isStale(r *domain.Reservation, today, now time.Time) bool {
	bookingDay := availability.StartOfDay(r.BookingDate, today.Location())
	if bookingDay.Before(today) {
		return true
	}
	if !availability.SameDay(bookingDay, today) {
		return false
	}
	end := availability.Anchor(today, r.TimeSlotEnd)
	return now.After(end.Add(s.cfg.Buffer))
}

// List returns reservations with everything the floor view needs, ordered
// by status and then by booking date.
func (s *Service) List(ctx context.Context, f ListFilter) ([]domain.Reservation, error) {
	var rf repository.ReservationFilter

	if f.Status != "" {
		status := domain.ReservationStatus(strings.ToUpper(strings.TrimSpace(f.Status)))
		switch status {
		case domain.ReservationConfirmed, domain.ReservationCancelled, domain.ReservationCompleted, domain.ReservationPendingPayment:
			rf.Status = status
		default:
			return nil, domain.NewValidationError("status", "unknown reservation status")
		}
	}

	if f.Date != "" {
		day, err := s.parseDay(f.Date)
		if err != nil {
			return nil, err
		}
		next := day.AddDate(0, 0, 1)
		rf.DayFrom = &day
		rf.DayTo = &next
	}

	return s.store.Reservations.List(ctx, rf)
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Reservation, error) {
	res, err := s.store.Reservations.GetDetailed(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reservation %d: %w", id, err)
	}
	return res, nil
}

// FreeTables lists tables that can take the party for the given slot,
// smallest first.
func (s *Service) FreeTables(ctx context.Context, q FreeTablesQuery) ([]domain.Table, error) {
	if err := validator.Struct(q); err != nil {
		return nil, err
	}

	day, w, err := s.parseSlot(q.Date, q.TimeSlotStart, q.TimeSlotEnd)
	if err != nil {
		return nil, err
	}
	if err := availability.ValidateSlot(s.cfg, day, w); err != nil {
		return nil, err
	}

	tables, err := s.store.Tables.ListWithConfirmedOn(ctx, day, day.AddDate(0, 0, 1), false)
	if err != nil {
		return nil, err
	}
	return availability.FindFreeTables(tables, day, w, q.PartySize, s.cfg.Overlap), nil
}

// FreeTablesFor lists the tables that could be allotted to an existing
// reservation.
func (s *Service) FreeTablesFor(ctx context.Context, reservationID int64) ([]domain.Table, error) {
	res, err := s.store.Reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, fmt.Errorf("reservation %d: %w", reservationID, err)
	}

	day := availability.StartOfDay(res.BookingDate, s.cfg.Loc())
	tables, err := s.store.Tables.ListWithConfirmedOn(ctx, day, day.AddDate(0, 0, 1), false)
	if err != nil {
		return nil, err
	}
	for i := range tables {
		tables[i].Reservations = withoutReservation(tables[i].Reservations, res.ID)
	}

	w := availability.Window{Start: res.TimeSlotStart, End: res.TimeSlotEnd}
	return availability.FindFreeTables(tables, day, w, res.PartySize, s.cfg.Overlap), nil
}

func withoutReservation(in []domain.Reservation, id int64) []domain.Reservation {
	out := in[:0]
	for _, r := range in {
		if r.ID != id {
			out = append(out, r)
		}
	}
	return out
}

func (s *Service) parseDay(raw string) (time.Time, error) {
	day, err := time.ParseInLocation(dateLayout, strings.TrimSpace(raw), s.cfg.Loc())
	if err != nil {
		return time.Time{}, domain.NewValidationError("booking_date", "must be a date in YYYY-MM-DD format")
	}
	return day, nil
}

func (s *Service) parseSlot(date, start, end string) (time.Time, availability.Window, error) {
	day, err := s.parseDay(date)
	if err != nil {
		return time.Time{}, availability.Window{}, err
	}
	st, err := s.parseClock(day, start)
	if err != nil {
		return time.Time{}, availability.Window{}, domain.NewValidationError("time_slot_start", err.Error())
	}
	en, err := s.parseClock(day, end)
	if err != nil {
		return time.Time{}, availability.Window{}, domain.NewValidationError("time_slot_end", err.Error())
	}
	return day, availability.Window{Start: st, End: en}, nil
}

func (s *Service) parseClock(day time.Time, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return availability.Anchor(day, t), nil
	}
	t, err := time.ParseInLocation("15:04", raw, day.Location())
	if err != nil {
		return time.Time{}, errors.New("must be HH:MM or an RFC 3339 timestamp")
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}

func (s *Service) notifyConfirmed(ctx context.Context, c domain.Customer, r domain.Reservation) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyReservationConfirmed(ctx, c, r); err != nil {
		s.loggerf("level=warn msg=confirmation notice failed reservation_id=%d err=%v", r.ID, err)
	}
}

func (s *Service) notifyCancelled(ctx context.Context, c domain.Customer, r domain.Reservation) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyReservationCancelled(ctx, c, r); err != nil {
		s.loggerf("level=warn msg=cancellation notice failed reservation_id=%d err=%v", r.ID, err)
	}
}

func (s *Service) publish(t domain.EventType, r *domain.Reservation) {
	if s.events == nil {
		return
	}
	s.events.Publish(domain.Event{Type: t, ReservationID: r.ID, TableID: r.TableID, Status: r.Status})
}

func formatID(id *int64) string {
	if id == nil {
		return "none"
	}
	return fmt.Sprintf("%d", *id)
}
