package config

import (
	"fmt"
	"strings"
	"time"
)

type OverlapMode string

const (
	OverlapSymmetric OverlapMode = "symmetric"
	OverlapLegacy    OverlapMode = "legacy"
)

// Engine holds the reservation and billing rules. It is built once at startup
// and passed by value to the services.
type Engine struct {
	TaxPercent         float64
	OpenHour           int
	CloseHour          int
	MinDuration        time.Duration
	MaxDuration        time.Duration
	Buffer             time.Duration
	AllotTableDirectly bool
	Overlap            OverlapMode
	Location           *time.Location
}

func DefaultEngine() Engine {
	return Engine{
		TaxPercent:  9.5,
		OpenHour:    10,
		CloseHour:   22,
		MinDuration: time.Hour,
		MaxDuration: 2 * time.Hour,
		Buffer:      15 * time.Minute,
		Overlap:     OverlapSymmetric,
		Location:    time.UTC,
	}
}

// Loc never returns nil.
func (e Engine) Loc() *time.Location {
	if e.Location == nil {
		return time.UTC
	}
	return e.Location
}

func (e Engine) Validate() error {
	if e.TaxPercent < 0 {
		return fmt.Errorf("TAX_PERCENT must be >= 0")
	}
	if e.OpenHour < 0 || e.OpenHour > 23 {
		return fmt.Errorf("WORKING_HOURS_START must be within 0..23")
	}
	if e.CloseHour < 1 || e.CloseHour > 24 {
		return fmt.Errorf("WORKING_HOURS_END must be within 1..24")
	}
	if e.OpenHour >= e.CloseHour {
		return fmt.Errorf("WORKING_HOURS_START must be before WORKING_HOURS_END")
	}
	if e.MinDuration <= 0 {
		return fmt.Errorf("BOOKING_MIN must be > 0")
	}
	if e.MaxDuration < e.MinDuration {
		return fmt.Errorf("BOOKING_MAX must be >= BOOKING_MIN")
	}
	if e.Buffer < 0 {
		return fmt.Errorf("BOOKING_BUFFER must be >= 0")
	}
	if e.Overlap != OverlapSymmetric && e.Overlap != OverlapLegacy {
		return fmt.Errorf("OVERLAP_MODE must be one of: symmetric, legacy")
	}
	return nil
}

func parseOverlapMode(v string) OverlapMode {
	return OverlapMode(strings.ToLower(strings.TrimSpace(v)))
}
