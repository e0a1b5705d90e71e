package membership

import (
	"time"

	"alcyxob/gym-manager/internal/domain"
)

// DefaultSoonWithinDays is the window used for "expiring soon" when none is configured.
const DefaultSoonWithinDays = 7

// Status is the classification of a membership end date relative to today.
type Status string

const (
	StatusNoTerm        Status = "none"
	StatusExpired       Status = "expired"
	StatusExpiringToday Status = "expiring_today"
	StatusExpiringSoon  Status = "expiring_soon"
	StatusActive        Status = "active"
)

// Classifier evaluates end dates and birthdays at day granularity.
// Stored dates are calendar dates at midnight UTC; "today" is taken in the
// business timezone. The zero value uses UTC and a 7 day window.
type Classifier struct {
	Location       *time.Location
	SoonWithinDays int
}

// NewClassifier returns a Classifier for loc.
func NewClassifier(loc *time.Location, soonWithinDays int) Classifier {
	return Classifier{Location: loc, SoonWithinDays: soonWithinDays}
}

func (c Classifier) loc() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

func (c Classifier) window() int {
	if c.SoonWithinDays <= 0 {
		return DefaultSoonWithinDays
	}
	return c.SoonWithinDays
}

// StartOfDay returns midnight of t's calendar day in the classifier's timezone.
func (c Classifier) StartOfDay(t time.Time) time.Time {
	y, m, d := t.In(c.loc()).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.loc())
}

// DayRange returns [start, end) of the business day containing now.
func (c Classifier) DayRange(now time.Time) (time.Time, time.Time) {
	start := c.StartOfDay(now)
	return start, start.AddDate(0, 0, 1)
}

// Today returns the current business date as midnight UTC, the same
// representation used for stored calendar dates (joining, end, birth).
func (c Classifier) Today(now time.Time) time.Time {
	y, m, d := now.In(c.loc()).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateOf truncates a stored calendar date to midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysRemaining returns the number of calendar days from today to end.
// ok is false when there is no end date.
func (c Classifier) DaysRemaining(end *time.Time, now time.Time) (days int, ok bool) {
	if end == nil {
		return 0, false
	}
	diff := DateOf(*end).Sub(c.Today(now))
	return int(diff / (24 * time.Hour)), true
}

func (c Classifier) IsExpiringToday(end *time.Time, now time.Time) bool {
	d, ok := c.DaysRemaining(end, now)
	return ok && d == 0
}

// IsExpiringSoon reports 0 < days remaining <= the classifier's window.
func (c Classifier) IsExpiringSoon(end *time.Time, now time.Time) bool {
	d, ok := c.DaysRemaining(end, now)
	return ok && d > 0 && d <= c.window()
}

func (c Classifier) IsExpired(end *time.Time, now time.Time) bool {
	d, ok := c.DaysRemaining(end, now)
	return ok && d < 0
}

// Classify folds the predicates into a single status.
func (c Classifier) Classify(end *time.Time, now time.Time) Status {
	d, ok := c.DaysRemaining(end, now)
	switch {
	case !ok:
		return StatusNoTerm
	case d < 0:
		return StatusExpired
	case d == 0:
		return StatusExpiringToday
	case d <= c.window():
		return StatusExpiringSoon
	default:
		return StatusActive
	}
}

// IsBirthdayToday compares month and day of dob with today, ignoring the year.
// A Feb 29 birthday falls on Feb 28 in common years.
func (c Classifier) IsBirthdayToday(dob *time.Time, now time.Time) bool {
	if dob == nil {
		return false
	}
	_, bm, bd := dob.UTC().Date()
	ty, tm, td := c.Today(now).Date()
	if bm == time.February && bd == 29 && !isLeapYear(ty) {
		bd = 28
	}
	return bm == tm && bd == td
}

func isLeapYear(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

// MembershipStatus derives the member's current status from the stored
// end date and freeze flag. Members without a term count as active.
func (c Classifier) MembershipStatus(m *domain.Member, now time.Time) domain.MembershipStatus {
	if m.IsFrozen {
		return domain.MembershipFrozen
	}
	if c.IsExpired(m.MembershipEndDate, now) {
		return domain.MembershipExpired
	}
	return domain.MembershipActive
}
