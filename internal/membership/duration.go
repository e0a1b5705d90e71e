// Package membership holds the pure date and money rules of a membership term:
// how long a plan lasts, what the member owes, and how close the term is to ending.
package membership

import (
	"errors"
	"fmt"
	"time"

	"alcyxob/gym-manager/internal/domain"
)

var (
	ErrInvalidDurationUnit  = errors.New("invalid duration unit")
	ErrInvalidDurationValue = errors.New("duration value must be a positive integer")
)

// ValidateDuration checks that d can be used to compute an end date.
func ValidateDuration(d domain.PlanDuration) error {
	switch d.Unit {
	case domain.UnitDays, domain.UnitMonths, domain.UnitYears:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDurationUnit, d.Unit)
	}
	if d.Value < 1 {
		return ErrInvalidDurationValue
	}
	return nil
}

// EndDate adds d to start using calendar arithmetic.
//
// Month and year additions keep the day of month and clamp it to the last day
// of the target month, so Jan 31 + 1 month is Feb 29 in a leap year.
func EndDate(start time.Time, d domain.PlanDuration) (time.Time, error) {
	if err := ValidateDuration(d); err != nil {
		return time.Time{}, err
	}
	switch d.Unit {
	case domain.UnitDays:
		return start.AddDate(0, 0, d.Value), nil
	case domain.UnitMonths:
		return addMonthsClamped(start, d.Value), nil
	default:
		return addMonthsClamped(start, d.Value*12), nil
	}
}

func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, day := t.Date()
	target := m + time.Month(months)
	// Day 0 of the following month is the last day of target.
	last := time.Date(y, target+1, 0, 0, 0, 0, 0, t.Location()).Day()
	if day > last {
		day = last
	}
	return time.Date(y, target, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// ApproxDays converts d to days with 30-day months and 365-day years.
// It is only suitable for display and ordering; end dates come from EndDate.
func ApproxDays(d domain.PlanDuration) int {
	switch d.Unit {
	case domain.UnitMonths:
		return d.Value * 30
	case domain.UnitYears:
		return d.Value * 365
	default:
		return d.Value
	}
}
