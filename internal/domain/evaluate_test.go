package domain

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCurrentThreshold(t *testing.T) {
	tests := []struct {
		days int
		want int
	}{
		{-5, ThresholdUrgent},
		{0, ThresholdUrgent},
		{3, ThresholdUrgent},
		{4, ThresholdWarning},
		{7, ThresholdWarning},
		{8, ThresholdNotice},
		{30, ThresholdNotice},
		{31, ThresholdNone},
		{365, ThresholdNone},
	}

	for _, tt := range tests {
		if got := CurrentThreshold(tt.days); got != tt.want {
			t.Errorf("CurrentThreshold(%d) = %d, want %d", tt.days, got, tt.want)
		}
	}
}

func TestEvaluate_NeverNotified(t *testing.T) {
	today := date(2026, time.September, 1)

	tests := []struct {
		name          string
		expiry        time.Time
		wantDue       bool
		wantThreshold int
		wantUrgency   string
	}{
		{"expires today", today, true, ThresholdUrgent, "URGENT"},
		{"already expired", date(2026, time.August, 20), true, ThresholdUrgent, "URGENT"},
		{"in 3 days", date(2026, time.September, 4), true, ThresholdUrgent, "URGENT"},
		{"in 5 days", date(2026, time.September, 6), true, ThresholdWarning, "WARNING"},
		{"in 7 days", date(2026, time.September, 8), true, ThresholdWarning, "WARNING"},
		{"in 20 days", date(2026, time.September, 21), true, ThresholdNotice, "NOTICE"},
		{"in 30 days", date(2026, time.October, 1), true, ThresholdNotice, "NOTICE"},
		{"in 31 days", date(2026, time.October, 2), false, 0, ""},
		{"next year", date(2027, time.September, 1), false, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Secret{Name: "cert", ExpiryDate: tt.expiry, Active: true}
			dec := Evaluate(today, s)
			if dec.Due != tt.wantDue {
				t.Fatalf("Due = %v, want %v", dec.Due, tt.wantDue)
			}
			if dec.Threshold != tt.wantThreshold {
				t.Errorf("Threshold = %d, want %d", dec.Threshold, tt.wantThreshold)
			}
			if dec.Urgency != tt.wantUrgency {
				t.Errorf("Urgency = %q, want %q", dec.Urgency, tt.wantUrgency)
			}
		})
	}
}

func TestEvaluate_BeyondWindowNeverDue(t *testing.T) {
	today := date(2026, time.September, 1)
	expiry := date(2026, time.December, 1)

	// Whatever state the secret carries, >30 days out is never due.
	for _, last := range []int{NeverNotified, ThresholdNotice, ThresholdWarning, ThresholdUrgent} {
		s := &Secret{Name: "cert", ExpiryDate: expiry, Active: true, LastNotifiedThreshold: last}
		if dec := Evaluate(today, s); dec.Due {
			t.Errorf("last=%d: expected not due beyond 30 days, got %+v", last, dec)
		}
	}
}

func TestEvaluate_MonotonicEscalation(t *testing.T) {
	today := date(2026, time.September, 1)
	s := &Secret{Name: "prod-db-cert", Active: true}

	// Notified at 30, now inside the 7-day band: escalate to 7.
	s.ExpiryDate = date(2026, time.September, 6)
	s.LastNotifiedThreshold = ThresholdNotice
	dec := Evaluate(today, s)
	if !dec.Due || dec.Threshold != ThresholdWarning {
		t.Fatalf("expected escalation to 7, got %+v", dec)
	}

	// Then inside the 3-day band: escalate to 3.
	s.ExpiryDate = date(2026, time.September, 3)
	s.LastNotifiedThreshold = ThresholdWarning
	dec = Evaluate(today, s)
	if !dec.Due || dec.Threshold != ThresholdUrgent {
		t.Fatalf("expected escalation to 3, got %+v", dec)
	}

	// Expiry pushed back above 7 days while state says 3: no de-escalation.
	s.ExpiryDate = date(2026, time.September, 20)
	s.LastNotifiedThreshold = ThresholdUrgent
	if dec = Evaluate(today, s); dec.Due {
		t.Fatalf("expected no de-escalation, got %+v", dec)
	}
}

func TestEvaluate_IdempotentWithinBand(t *testing.T) {
	today := date(2026, time.September, 1)

	tests := []struct {
		name   string
		expiry time.Time
		last   int
	}{
		{"urgent band", date(2026, time.September, 2), ThresholdUrgent},
		{"warning band", date(2026, time.September, 7), ThresholdWarning},
		{"notice band", date(2026, time.September, 25), ThresholdNotice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Secret{Name: "cert", ExpiryDate: tt.expiry, Active: true, LastNotifiedThreshold: tt.last}
			if dec := Evaluate(today, s); dec.Due {
				t.Errorf("already notified at %d, expected not due, got %+v", tt.last, dec)
			}
		})
	}
}

// TestEvaluate_BoundaryWalk follows one secret across three consecutive
// evaluation days: first contact with the 7-day band, the quiet day after,
// then escalation into the 3-day band.
func TestEvaluate_BoundaryWalk(t *testing.T) {
	expiry := date(2026, time.September, 8)
	s := &Secret{Name: "api-token", ExpiryDate: expiry, Active: true}

	// Day 1: 7 days out, never notified -> WARNING.
	dec := Evaluate(date(2026, time.September, 1), s)
	if !dec.Due || dec.Threshold != ThresholdWarning || dec.Urgency != "WARNING" {
		t.Fatalf("day 1: got %+v", dec)
	}
	s.LastNotifiedThreshold = dec.Threshold

	// Day 2: 6 days out, still in the 7-day band -> quiet.
	if dec = Evaluate(date(2026, time.September, 2), s); dec.Due {
		t.Fatalf("day 2: expected not due, got %+v", dec)
	}

	// Day 5: 3 days out -> URGENT escalation.
	dec = Evaluate(date(2026, time.September, 5), s)
	if !dec.Due || dec.Threshold != ThresholdUrgent || dec.Urgency != "URGENT" {
		t.Fatalf("day 5: got %+v", dec)
	}
}

func TestDaysRemaining(t *testing.T) {
	s := &Secret{ExpiryDate: date(2026, time.September, 10)}

	// Time-of-day on either side must not shift the whole-day diff.
	today := time.Date(2026, time.September, 1, 23, 59, 0, 0, time.UTC)
	if got := s.DaysRemaining(today); got != 9 {
		t.Errorf("DaysRemaining = %d, want 9", got)
	}

	past := &Secret{ExpiryDate: date(2026, time.August, 28)}
	if got := past.DaysRemaining(date(2026, time.September, 1)); got != -4 {
		t.Errorf("DaysRemaining = %d, want -4", got)
	}
}

func TestUrgencyLabels(t *testing.T) {
	tests := []struct {
		threshold int
		label     string
		emoji     string
	}{
		{ThresholdUrgent, "URGENT", "🚨"},
		{ThresholdWarning, "WARNING", "⚠️"},
		{ThresholdNotice, "NOTICE", "📅"},
		{42, "UNKNOWN", "ℹ️"},
	}

	for _, tt := range tests {
		if got := UrgencyLabel(tt.threshold); got != tt.label {
			t.Errorf("UrgencyLabel(%d) = %q, want %q", tt.threshold, got, tt.label)
		}
		if got := UrgencyEmoji(tt.threshold); got != tt.emoji {
			t.Errorf("UrgencyEmoji(%d) = %q, want %q", tt.threshold, got, tt.emoji)
		}
	}
}
