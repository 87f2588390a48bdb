package clock

import "time"

// Clock is the canonical "now" source. Status derivation (overdue vs
// pending) and notification windows compare date-only values, so every
// caller must go through the same clock to stay in one timezone.
type Clock interface {
	Now() time.Time
}

// System is the production clock.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Fixed always returns the same instant. Test use only.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time { return f.T }

// Today truncates t to midnight in t's location. Date comparisons
// (due dates, deadline windows) operate on these values.
func Today(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
