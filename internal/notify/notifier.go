// Package notify fans expiry notifications out to independently configured
// channels. Every channel implements the same Notifier capability so the
// dispatcher iterates them uniformly instead of branching per provider.
package notify

import (
	"context"
	"time"

	"github.com/expiryguard/expiryguard/internal/domain"
)

// Event kinds carried by a Notification.
const (
	EventExpiryWarning = "secret_expiry_warning"
	EventSummary       = "expiry_summary"
	EventTest          = "test"
)

// Notification is the channel-agnostic payload. Each notifier renders the
// fields relevant to its event kind in its own wire format.
type Notification struct {
	Event string

	// Expiry fields (EventExpiryWarning)
	SecretName    string
	OwnerEmail    string
	ExpiryDate    time.Time
	DaysRemaining int
	Threshold     int
	Urgency       string

	// Summary fields (EventSummary)
	TotalCandidates   int
	NotificationsSent int
	UrgentSecrets     []string
}

// Notifier is a single outbound channel.
type Notifier interface {
	Name() string
	Send(ctx context.Context, n Notification) error
}

// Outcome records one channel's attempt.
type Outcome struct {
	Channel string
	Err     error
}

// NewExpiryNotification builds the payload for a due secret.
func NewExpiryNotification(secret *domain.Secret, dec domain.Decision) Notification {
	return Notification{
		Event:         EventExpiryWarning,
		SecretName:    secret.Name,
		OwnerEmail:    secret.OwnerEmail,
		ExpiryDate:    secret.ExpiryDate,
		DaysRemaining: dec.DaysRemaining,
		Threshold:     dec.Threshold,
		Urgency:       dec.Urgency,
	}
}

// NewSummaryNotification builds the once-per-run broadcast payload.
func NewSummaryNotification(total, sent int, urgent []string) Notification {
	return Notification{
		Event:             EventSummary,
		TotalCandidates:   total,
		NotificationsSent: sent,
		UrgentSecrets:     urgent,
	}
}
