package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/expiryguard/expiryguard/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func expiryNotification() Notification {
	secret := &domain.Secret{
		Name:       "prod-db-cert",
		OwnerEmail: "ops@example.com",
		ExpiryDate: date(2026, time.September, 4),
		Active:     true,
	}
	dec := domain.Decision{Due: true, Threshold: 3, DaysRemaining: 3, Urgency: "URGENT"}
	return NewExpiryNotification(secret, dec)
}

// capture records the last JSON body a test server received.
func capture(t *testing.T, status int) (*httptest.Server, *map[string]any) {
	t.Helper()
	var body map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(ts.Close)
	return ts, &body
}

func TestSlack_Send(t *testing.T) {
	ts, body := capture(t, http.StatusOK)

	s := NewSlack(ts.URL, time.Second)
	if err := s.Send(context.Background(), expiryNotification()); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	text, _ := (*body)["text"].(string)
	for _, want := range []string{"URGENT", "prod-db-cert", "3 days", "2026-09-04", "ops@example.com"} {
		if !strings.Contains(text, want) {
			t.Errorf("slack text missing %q: %s", want, text)
		}
	}
	if mrkdwn, _ := (*body)["mrkdwn"].(bool); !mrkdwn {
		t.Error("mrkdwn flag not set")
	}
}

func TestDiscord_Send(t *testing.T) {
	ts, body := capture(t, http.StatusNoContent)

	d := NewDiscord(ts.URL, time.Second)
	if err := d.Send(context.Background(), expiryNotification()); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	content, _ := (*body)["content"].(string)
	if !strings.Contains(content, "**[URGENT]**") {
		t.Errorf("discord emphasis markers missing: %s", content)
	}
	if !strings.Contains(content, "prod-db-cert") {
		t.Errorf("discord content missing secret name: %s", content)
	}
}

func TestGenericWebhook_Send(t *testing.T) {
	ts, body := capture(t, http.StatusOK)

	g := NewGenericWebhook(ts.URL, time.Second)
	g.now = func() time.Time { return time.Date(2026, time.September, 1, 9, 0, 0, 0, time.UTC) }

	if err := g.Send(context.Background(), expiryNotification()); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	got := *body
	want := map[string]any{
		"event":          "secret_expiry_warning",
		"secret_name":    "prod-db-cert",
		"expiry_date":    "2026-09-04",
		"days_remaining": float64(3),
		"threshold":      float64(3),
		"urgency":        "URGENT",
		"owner_email":    "ops@example.com",
		"timestamp":      "2026-09-01T09:00:00Z",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("payload[%q] = %v, want %v", k, got[k], v)
		}
	}
}

func TestGenericWebhook_Summary(t *testing.T) {
	ts, body := capture(t, http.StatusOK)

	g := NewGenericWebhook(ts.URL, time.Second)
	n := NewSummaryNotification(10, 2, []string{"prod-db-cert"})
	if err := g.Send(context.Background(), n); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	got := *body
	if got["event"] != "expiry_summary" {
		t.Errorf("event = %v, want expiry_summary", got["event"])
	}
	if got["total_candidates"] != float64(10) || got["notifications_sent"] != float64(2) {
		t.Errorf("totals wrong: %v", got)
	}
	urgent, _ := got["urgent_secrets"].([]any)
	if len(urgent) != 1 || urgent[0] != "prod-db-cert" {
		t.Errorf("urgent_secrets = %v, want [prod-db-cert]", got["urgent_secrets"])
	}
}

func TestWebhook_Non2xxIsError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	notifiers := []Notifier{
		NewSlack(ts.URL, time.Second),
		NewDiscord(ts.URL, time.Second),
		NewGenericWebhook(ts.URL, time.Second),
	}
	for _, n := range notifiers {
		if err := n.Send(context.Background(), expiryNotification()); err == nil {
			t.Errorf("%s: expected error on 500 response", n.Name())
		}
	}
}

func TestWebhook_UnreachableIsError(t *testing.T) {
	s := NewSlack("http://127.0.0.1:1", 200*time.Millisecond)
	if err := s.Send(context.Background(), expiryNotification()); err == nil {
		t.Error("expected error for unreachable endpoint")
	}
}

func TestSummaryText_NoUrgent(t *testing.T) {
	n := NewSummaryNotification(5, 0, nil)
	text := summaryText(n, "*")
	if !strings.Contains(text, "No urgent secrets today!") {
		t.Errorf("expected quiet-day line, got: %s", text)
	}
	if !strings.Contains(text, "Secrets monitored: 5") {
		t.Errorf("expected monitored count, got: %s", text)
	}
}
