package domain

import "time"

// Notification thresholds, in days remaining before expiry.
// Lower value = more urgent.
const (
	ThresholdUrgent  = 3
	ThresholdWarning = 7
	ThresholdNotice  = 30

	// ThresholdNone is the sentinel for "no notification applies"
	// (more than 30 days remaining).
	ThresholdNone = 0

	// NeverNotified is the zero state of Secret.LastNotifiedThreshold.
	NeverNotified = 0
)

// Decision is the outcome of evaluating one secret against today's date.
// It is an immutable value; committing the resulting state change is the
// caller's job.
type Decision struct {
	Due           bool
	Threshold     int // 3, 7 or 30 when Due
	DaysRemaining int
	Urgency       string // URGENT / WARNING / NOTICE
}

// CurrentThreshold maps days remaining to the threshold band it falls in,
// most urgent first. Returns ThresholdNone above 30 days.
func CurrentThreshold(daysRemaining int) int {
	switch {
	case daysRemaining <= ThresholdUrgent:
		return ThresholdUrgent
	case daysRemaining <= ThresholdWarning:
		return ThresholdWarning
	case daysRemaining <= ThresholdNotice:
		return ThresholdNotice
	default:
		return ThresholdNone
	}
}

// Evaluate decides whether a notification is due for the secret.
//
// State-based escalation:
//   - never notified              -> due at the current threshold
//   - current < last notified    -> due (escalation, more urgent band)
//   - current >= last notified   -> not due, already covered
//
// Pure and deterministic given today; no side effects.
func Evaluate(today time.Time, secret *Secret) Decision {
	days := secret.DaysRemaining(today)
	current := CurrentThreshold(days)

	dec := Decision{DaysRemaining: days}

	// More than 30 days out: nothing to do regardless of state.
	if current == ThresholdNone {
		return dec
	}

	last := secret.LastNotifiedThreshold
	if last != NeverNotified && current >= last {
		// Same or less urgent band already notified. No de-escalation.
		return dec
	}

	dec.Due = true
	dec.Threshold = current
	dec.Urgency = UrgencyLabel(current)
	return dec
}

// UrgencyLabel returns the display label for a threshold.
func UrgencyLabel(threshold int) string {
	switch threshold {
	case ThresholdUrgent:
		return "URGENT"
	case ThresholdWarning:
		return "WARNING"
	case ThresholdNotice:
		return "NOTICE"
	default:
		return "UNKNOWN"
	}
}

// UrgencyEmoji returns the marker used across all chat channels so the
// rendering stays consistent between Slack and Discord.
func UrgencyEmoji(threshold int) string {
	switch threshold {
	case ThresholdUrgent:
		return "🚨"
	case ThresholdWarning:
		return "⚠️"
	case ThresholdNotice:
		return "📅"
	default:
		return "ℹ️"
	}
}
