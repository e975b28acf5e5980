// Package availability decides whether a table can take a party for a time
// window. Everything here is pure: callers load the data and act on the answer.
package availability

import (
	"fmt"
	"sort"
	"time"

	"dinein/internal/config"
	"dinein/internal/domain"
)

// Window is a candidate time slot. Only the time of day of Start and End is
// compared against existing reservations.
type Window struct {
	Start time.Time
	End   time.Time
}

// SameDay compares calendar dates, each value read in its own location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// minuteOfDay drops the date and keeps hour/minute/second in loc.
func minuteOfDay(t time.Time, loc *time.Location) time.Duration {
	t = t.In(loc)
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second
}

// Overlaps reports whether the candidate window collides with an existing one.
//
// OverlapLegacy keeps the old two-sided boundary test: the candidate start
// inside [existingStart, existingEnd) or the candidate end inside
// (existingStart, existingEnd]. It misses a candidate that strictly contains
// the existing window.
func Overlaps(existing, candidate Window, loc *time.Location, mode config.OverlapMode) bool {
	es, ee := minuteOfDay(existing.Start, loc), minuteOfDay(existing.End, loc)
	cs, ce := minuteOfDay(candidate.Start, loc), minuteOfDay(candidate.End, loc)

	if mode == config.OverlapLegacy {
		return (cs >= es && cs < ee) || (ce > es && ce <= ee)
	}
	return es < ce && cs < ee
}

// IsTableFree is false when the party does not fit or when any confirmed
// reservation of the table on the same day overlaps the window. day's
// location is the reference for dates and times of day.
func IsTableFree(table domain.Table, reservations []domain.Reservation, day time.Time, w Window, partySize int, mode config.OverlapMode) bool {
	if partySize > table.Capacity {
		return false
	}

	loc := day.Location()
	for _, r := range reservations {
		if r.Status != domain.ReservationConfirmed {
			continue
		}
		if r.TableID != nil && *r.TableID != table.ID {
			continue
		}
		if !SameDay(r.BookingDate.In(loc), day) {
			continue
		}
		if Overlaps(Window{Start: r.TimeSlotStart, End: r.TimeSlotEnd}, w, loc, mode) {
			return false
		}
	}
	return true
}

// FindFreeTables returns the tables able to take the party, smallest first.
// Each table's Reservations are used as its existing bookings.
func FindFreeTables(tables []domain.Table, day time.Time, w Window, partySize int, mode config.OverlapMode) []domain.Table {
	free := make([]domain.Table, 0, len(tables))
	for _, t := range tables {
		if IsTableFree(t, t.Reservations, day, w, partySize, mode) {
			free = append(free, t)
		}
	}

	sort.SliceStable(free, func(i, j int) bool {
		if free[i].Capacity != free[j].Capacity {
			return free[i].Capacity < free[j].Capacity
		}
		return free[i].Number < free[j].Number
	})
	return free
}

// Anchor moves the time of day of t onto the calendar day d, in d's location.
func Anchor(d, t time.Time) time.Time {
	t = t.In(d.Location())
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), t.Second(), 0, d.Location())
}

// StartOfDay truncates t to midnight in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// ValidateWindow checks a requested slot against the configured rules before
// any availability lookup. The window is expected to be anchored on day.
func ValidateWindow(cfg config.Engine, day time.Time, w Window, now time.Time) error {
	if err := ValidateSlot(cfg, day, w); err != nil {
		return err
	}
	if !w.Start.After(now) {
		return domain.NewValidationError("time_slot_start", "must be in the future")
	}
	return nil
}

// ValidateSlot applies the working hours and duration rules only. Read-only
// lookups use it so past slots can still be inspected.
func ValidateSlot(cfg config.Engine, day time.Time, w Window) error {
	loc := cfg.Loc()

	if !w.Start.Before(w.End) {
		return domain.NewValidationError("time_slot_end", "must be after time_slot_start")
	}

	base := StartOfDay(day, loc)
	open := base.Add(time.Duration(cfg.OpenHour) * time.Hour)
	closing := base.Add(time.Duration(cfg.CloseHour) * time.Hour)
	if w.Start.Before(open) || w.End.After(closing) {
		return domain.NewValidationError("time_slot_start",
			fmt.Sprintf("must be within working hours %02d:00-%02d:00", cfg.OpenHour, cfg.CloseHour))
	}

	d := w.End.Sub(w.Start)
	if d < cfg.MinDuration || d > cfg.MaxDuration {
		return domain.NewValidationError("time_slot_end",
			fmt.Sprintf("booking must last between %s and %s", formatDuration(cfg.MinDuration), formatDuration(cfg.MaxDuration)))
	}
	return nil
}

func formatDuration(d time.Duration) string {
	if d%time.Hour == 0 {
		return fmt.Sprintf("%dh", int(d/time.Hour))
	}
	return fmt.Sprintf("%dm", int(d/time.Minute))
}
