package notify

import (
	"context"

	"github.com/expiryguard/expiryguard/internal/domain"
	"github.com/expiryguard/expiryguard/internal/logger"
)

// Dispatcher fans one notification out to every configured channel.
//
// Channels fail independently: a dead Slack webhook never blocks the
// email send or the generic webhook. Every failure is logged and recorded
// in the returned outcomes; Dispatch itself never errors. Delivery is
// best-effort - the caller commits notification state as long as the
// dispatch pass ran to completion.
type Dispatcher struct {
	log      logger.Logger
	email    Notifier   // nil when email is not configured
	webhooks []Notifier // Slack / Discord / generic, already filtered to configured ones
}

// NewDispatcher wires the configured channels. Pass a nil email notifier
// and/or an empty webhook list for channels that are not configured;
// absence of a target is not an error, those channels are skipped.
func NewDispatcher(log logger.Logger, email Notifier, webhooks []Notifier) *Dispatcher {
	return &Dispatcher{
		log:      log,
		email:    email,
		webhooks: webhooks,
	}
}

// Configured reports whether at least one channel exists.
func (d *Dispatcher) Configured() bool {
	return d.email != nil || len(d.webhooks) > 0
}

// SummaryConfigured reports whether the summary broadcast has a target.
func (d *Dispatcher) SummaryConfigured() bool {
	return len(d.webhooks) > 0
}

// Dispatch sends the expiry notification for one due secret to every
// configured channel. Email goes first and is always attempted,
// independent of the webhook set.
func (d *Dispatcher) Dispatch(ctx context.Context, secret *domain.Secret, dec domain.Decision) []Outcome {
	n := NewExpiryNotification(secret, dec)

	out := make([]Outcome, 0, 1+len(d.webhooks))
	if d.email != nil {
		out = append(out, d.send(ctx, d.email, n))
	}
	for _, w := range d.webhooks {
		out = append(out, d.send(ctx, w, n))
	}
	return out
}

// BroadcastSummary sends the once-per-run totals to the chat and generic
// webhook channels. Email never receives summaries.
func (d *Dispatcher) BroadcastSummary(ctx context.Context, total, sent int, urgent []string) []Outcome {
	n := NewSummaryNotification(total, sent, urgent)

	out := make([]Outcome, 0, len(d.webhooks))
	for _, w := range d.webhooks {
		out = append(out, d.send(ctx, w, n))
	}
	return out
}

// SendTest pushes a test message to every configured channel. The email
// channel uses to as the recipient; chat channels ignore it.
func (d *Dispatcher) SendTest(ctx context.Context, to string) []Outcome {
	n := Notification{Event: EventTest, OwnerEmail: to}

	out := make([]Outcome, 0, 1+len(d.webhooks))
	if d.email != nil && to != "" {
		out = append(out, d.send(ctx, d.email, n))
	}
	for _, w := range d.webhooks {
		out = append(out, d.send(ctx, w, n))
	}
	return out
}

func (d *Dispatcher) send(ctx context.Context, n Notifier, payload Notification) Outcome {
	err := n.Send(ctx, payload)
	if err != nil {
		d.log.Warn("notification send failed",
			logger.String("channel", n.Name()),
			logger.String("event", payload.Event),
			logger.String("secret", payload.SecretName),
			logger.Error(err))
	} else {
		d.log.Debug("notification sent",
			logger.String("channel", n.Name()),
			logger.String("event", payload.Event),
			logger.String("secret", payload.SecretName))
	}
	return Outcome{Channel: n.Name(), Err: err}
}
