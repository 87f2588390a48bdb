package entity

import (
	"testing"
	"time"
)

func TestDeriveStatus(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, 3, 15, 14, 30, 0, 0, loc)

	cases := []struct {
		name    string
		dueDate time.Time
		want    string
	}{
		{"due in the future", time.Date(2026, 3, 20, 0, 0, 0, 0, loc), PendencyStatusPending},
		{"due today", time.Date(2026, 3, 15, 0, 0, 0, 0, loc), PendencyStatusPending},
		{"due today late hour", time.Date(2026, 3, 15, 23, 59, 0, 0, loc), PendencyStatusPending},
		{"due yesterday", time.Date(2026, 3, 14, 0, 0, 0, 0, loc), PendencyStatusOverdue},
		{"long overdue", time.Date(2026, 1, 1, 0, 0, 0, 0, loc), PendencyStatusOverdue},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := &FinancialPendency{DueDate: c.dueDate}
			if got := p.DeriveStatus(now); got != c.want {
				t.Errorf("DeriveStatus(due=%s, now=%s) = %q, want %q", c.dueDate, now, got, c.want)
			}
		})
	}
}

func TestDeriveStatusIgnoresTimeOfDay(t *testing.T) {
	loc := time.UTC
	// Just past midnight: a pendency due "yesterday at 23:00" is overdue,
	// one due "today at 00:00" is not.
	now := time.Date(2026, 3, 15, 0, 5, 0, 0, loc)

	overdue := &FinancialPendency{DueDate: time.Date(2026, 3, 14, 23, 0, 0, 0, loc)}
	if got := overdue.DeriveStatus(now); got != PendencyStatusOverdue {
		t.Errorf("expected overdue, got %q", got)
	}
	pending := &FinancialPendency{DueDate: time.Date(2026, 3, 15, 0, 0, 0, 0, loc)}
	if got := pending.DeriveStatus(now); got != PendencyStatusPending {
		t.Errorf("expected pending, got %q", got)
	}
}
