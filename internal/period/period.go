// Package period resolves dashboard reporting windows and normalises
// caller-supplied filter dates to the stored UTC boundaries.
package period

import (
	"fmt"
	"time"
)

// Period is the dashboard window selector.
type Period string

const (
	Daily   Period = "daily"
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
)

// TrendDays is the trailing window of the orders trend series.
const TrendDays = 7

// ParsePeriod validates API input. An empty value is Daily.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "":
		return Daily, nil
	case Daily, Weekly, Monthly:
		return Period(s), nil
	default:
		return "", fmt.Errorf("invalid period %q", s)
	}
}

// Policy computes window bounds against an injectable clock and location.
type Policy struct {
	Now      func() time.Time
	Location *time.Location
}

// NewPolicy returns a Policy on the wall clock in loc (time.Local when nil).
func NewPolicy(loc *time.Location) Policy {
	if loc == nil {
		loc = time.Local
	}
	return Policy{Now: time.Now, Location: loc}
}

func (p Policy) now() time.Time {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	loc := p.Location
	if loc == nil {
		loc = time.Local
	}
	return now().In(loc)
}

// LowerBound returns the start of the window for period. Any value other
// than weekly or monthly behaves as daily.
func (p Policy) LowerBound(period Period) time.Time {
	now := p.now()
	switch period {
	case Weekly:
		return now.AddDate(0, 0, -7)
	case Monthly:
		return now.AddDate(0, 0, -30)
	default:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	}
}

// TrendLowerBound is now minus TrendDays, independent of the selected period.
func (p Policy) TrendLowerBound() time.Time {
	return p.now().AddDate(0, 0, -TrendDays)
}

// DayStart pins t to 03:00:00.000 UTC of its UTC calendar day (midnight at UTC-3).
func DayStart(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 3, 0, 0, 0, time.UTC)
}

// DayEnd pins t to 23:59:59.998 UTC of its UTC calendar day.
func DayEnd(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 23, 59, 59, 998*int(time.Millisecond), time.UTC)
}

// ParseDate accepts "2006-01-02" or RFC 3339 filter dates.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}
