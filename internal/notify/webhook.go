package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/expiryguard/expiryguard/internal/utils"
)

const dateLayout = "2006-01-02"

// newHTTPClient returns the client shared by the webhook channels.
// Keep-alives are off: one POST per run per channel, nothing to pool.
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DisableKeepAlives: true,
		},
	}
}

// postJSON sends payload to url and treats any non-2xx status as an error.
func postJSON(ctx context.Context, client *http.Client, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post webhook: %w", err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// GenericWebhook posts structured key/value payloads to an arbitrary
// HTTP endpoint for machine consumption.
type GenericWebhook struct {
	url    string
	client *http.Client
	now    func() time.Time
}

// NewGenericWebhook creates the generic webhook channel.
func NewGenericWebhook(url string, timeout time.Duration) *GenericWebhook {
	return &GenericWebhook{
		url:    url,
		client: newHTTPClient(timeout),
		now:    time.Now,
	}
}

func (g *GenericWebhook) Name() string { return "generic" }

func (g *GenericWebhook) Send(ctx context.Context, n Notification) error {
	var payload map[string]any

	switch n.Event {
	case EventExpiryWarning:
		payload = map[string]any{
			"event":          EventExpiryWarning,
			"secret_name":    n.SecretName,
			"expiry_date":    n.ExpiryDate.Format(dateLayout),
			"days_remaining": n.DaysRemaining,
			"threshold":      n.Threshold,
			"urgency":        n.Urgency,
			"owner_email":    n.OwnerEmail,
			"timestamp":      g.now().UTC().Format(time.RFC3339),
		}
	case EventSummary:
		payload = map[string]any{
			"event":              EventSummary,
			"total_candidates":   n.TotalCandidates,
			"notifications_sent": n.NotificationsSent,
			"urgent_secrets":     n.UrgentSecrets,
			"timestamp":          g.now().UTC().Format(time.RFC3339),
		}
	case EventTest:
		payload = map[string]any{
			"event":     EventTest,
			"timestamp": g.now().UTC().Format(time.RFC3339),
		}
	default:
		return fmt.Errorf("unknown event kind: %q", n.Event)
	}

	return postJSON(ctx, g.client, g.url, payload)
}
