package domain

import (
	"errors"
	"time"
)

// ErrNotFound is returned by stores when a secret ID has no entry.
var ErrNotFound = errors.New("secret not found")

// Secret represents a single monitored expiring item
// (credential, certificate, license, ...).
type Secret struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is the canonical unique identifier (uuid).
	ID string `json:"id"`

	// OwnerEmail is the address of the owning user.
	// Ownership itself is managed outside this service; the email is
	// all the notification engine needs.
	OwnerEmail string `json:"owner_email"`

	// ─────────────────────────────
	// User-facing fields
	// ─────────────────────────────

	// Name is the display label. Never empty.
	Name string `json:"name"`

	// ExpiryDate is a calendar date (midnight UTC, no time-of-day).
	ExpiryDate time.Time `json:"expiry_date"`

	// Notes is optional free text.
	Notes string `json:"notes,omitempty"`

	// ─────────────────────────────
	// Liveness & cleanup
	// ─────────────────────────────

	// Active marks the secret as monitored. Setting it to false is a
	// soft delete: the secret is excluded from every query and
	// notification from then on.
	Active bool `json:"active"`

	// ─────────────────────────────
	// Notification state
	// ─────────────────────────────

	// LastNotifiedOn records when the last notification went out.
	// Audit only - decision logic never reads it.
	LastNotifiedOn time.Time `json:"last_notified_on,omitempty"`

	// LastNotifiedThreshold is the threshold level last notified
	// (30, 7, 3, or NeverNotified). This is the only field the
	// escalation logic reads.
	LastNotifiedThreshold int `json:"last_notified_threshold,omitempty"`

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DateUTC truncates t to its calendar date at midnight UTC.
func DateUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysRemaining returns the whole days between today and the expiry
// date. Negative for already-expired secrets.
func (s *Secret) DaysRemaining(today time.Time) int {
	return int(DateUTC(s.ExpiryDate).Sub(DateUTC(today)).Hours() / 24)
}
