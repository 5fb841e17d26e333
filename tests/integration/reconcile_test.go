package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/expiryguard/expiryguard/internal/domain"
	"github.com/expiryguard/expiryguard/internal/logger"
	"github.com/expiryguard/expiryguard/internal/notify"
	"github.com/expiryguard/expiryguard/internal/reconcile"
	"github.com/expiryguard/expiryguard/internal/store/memory"
)

// capture records every JSON payload posted to a webhook endpoint.
type capture struct {
	mu       sync.Mutex
	payloads []map[string]any
}

func (c *capture) server() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p map[string]any
		_ = json.NewDecoder(r.Body).Decode(&p)
		c.mu.Lock()
		c.payloads = append(c.payloads, p)
		c.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
}

func (c *capture) events() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, p := range c.payloads {
		if e, ok := p["event"].(string); ok {
			out = append(out, e)
		}
	}
	return out
}

// TestFullReconciliationPass wires the store, the evaluation job and a
// real webhook channel together and runs a complete pass over an
// inventory spread across all urgency bands.
func TestFullReconciliationPass(t *testing.T) {
	hook := &capture{}
	srv := hook.server()
	defer srv.Close()

	today := domain.DateUTC(time.Now().UTC())
	store := memory.NewStore()
	ctx := context.Background()

	seed := []struct {
		id     string
		name   string
		days   int
		active bool
	}{
		{"s-urgent", "prod-db-cert", 2, true},
		{"s-warning", "api-token", 5, true},
		{"s-notice", "tls-cert", 20, true},
		{"s-quiet", "backup-key", 45, true},
		{"s-retired", "old-cert", 1, false},
	}
	for _, s := range seed {
		err := store.Save(ctx, &domain.Secret{
			ID:         s.id,
			Name:       s.name,
			OwnerEmail: "ops@example.com",
			ExpiryDate: today.AddDate(0, 0, s.days),
			Active:     s.active,
		})
		if err != nil {
			t.Fatalf("seed store: %v", err)
		}
	}

	log := logger.New("error", false)
	dispatcher := notify.NewDispatcher(log, nil,
		[]notify.Notifier{notify.NewGenericWebhook(srv.URL, 5*time.Second)})
	job := reconcile.New(store, dispatcher, log, 30, true)

	summary, err := job.RunOnce(ctx)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	// Only active secrets inside the 30-day window are candidates; three
	// of them are due on a fresh inventory.
	if summary.Candidates != 3 {
		t.Errorf("Candidates = %d, want 3", summary.Candidates)
	}
	if summary.Sent != 3 {
		t.Errorf("Sent = %d, want 3", summary.Sent)
	}
	if len(summary.Urgent) != 1 || summary.Urgent[0] != "prod-db-cert" {
		t.Errorf("Urgent = %v, want [prod-db-cert]", summary.Urgent)
	}

	events := hook.events()
	warnings, summaries := 0, 0
	for _, e := range events {
		switch e {
		case "secret_expiry_warning":
			warnings++
		case "expiry_summary":
			summaries++
		}
	}
	if warnings != 3 || summaries != 1 {
		t.Errorf("webhook saw %d warnings and %d summaries, want 3 and 1 (events: %v)", warnings, summaries, events)
	}

	// Notification state landed in the store.
	urgent, err := store.Get(ctx, "s-urgent")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if urgent.LastNotifiedThreshold != domain.ThresholdUrgent {
		t.Errorf("LastNotifiedThreshold = %d, want %d", urgent.LastNotifiedThreshold, domain.ThresholdUrgent)
	}
	if !domain.DateUTC(urgent.LastNotifiedOn).Equal(today) {
		t.Errorf("LastNotifiedOn = %v, want %v", urgent.LastNotifiedOn, today)
	}

	// A second pass on the same day stays quiet: thresholds are
	// unchanged, so nothing is due. The summary still goes out.
	before := len(hook.events())
	summary, err = job.RunOnce(ctx)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if summary.Sent != 0 {
		t.Errorf("second run Sent = %d, want 0", summary.Sent)
	}
	for _, e := range hook.events()[before:] {
		if e == "secret_expiry_warning" {
			t.Error("second run re-notified an already-notified secret")
		}
	}
}
