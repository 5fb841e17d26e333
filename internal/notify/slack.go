package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/expiryguard/expiryguard/internal/domain"
)

// Slack posts human-readable messages to a Slack incoming webhook.
type Slack struct {
	url    string
	client *http.Client
}

// NewSlack creates the Slack channel.
func NewSlack(url string, timeout time.Duration) *Slack {
	return &Slack{
		url:    url,
		client: newHTTPClient(timeout),
	}
}

func (s *Slack) Name() string { return "slack" }

func (s *Slack) Send(ctx context.Context, n Notification) error {
	text, err := slackText(n)
	if err != nil {
		return err
	}
	return postJSON(ctx, s.client, s.url, map[string]any{
		"text":   text,
		"mrkdwn": true,
	})
}

func slackText(n Notification) (string, error) {
	switch n.Event {
	case EventExpiryWarning:
		return fmt.Sprintf(
			"%s *[%s]* Secret *%s* expires in *%d days* (%s)\nOwner: %s",
			domain.UrgencyEmoji(n.Threshold),
			n.Urgency,
			n.SecretName,
			n.DaysRemaining,
			n.ExpiryDate.Format(dateLayout),
			n.OwnerEmail,
		), nil
	case EventSummary:
		return summaryText(n, "*"), nil
	case EventTest:
		return "👋 ExpiryGuard test message. Channel is wired up correctly.", nil
	default:
		return "", fmt.Errorf("unknown event kind: %q", n.Event)
	}
}

// summaryText renders the daily run summary. bold is the channel's
// emphasis marker ("*" for Slack, "**" for Discord).
func summaryText(n Notification, bold string) string {
	urgentLine := "• No urgent secrets today!"
	if len(n.UrgentSecrets) > 0 {
		urgentLine = "• ⚠️ Urgent: " + strings.Join(n.UrgentSecrets, ", ")
	}
	return fmt.Sprintf(
		"📊 %sExpiryGuard Daily Summary%s\n• Secrets monitored: %d\n• Notifications sent: %d\n%s",
		bold, bold,
		n.TotalCandidates,
		n.NotificationsSent,
		urgentLine,
	)
}
