package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/expiryguard/expiryguard/internal/domain"
)

// Discord posts human-readable messages to a Discord webhook.
type Discord struct {
	url    string
	client *http.Client
}

// NewDiscord creates the Discord channel.
func NewDiscord(url string, timeout time.Duration) *Discord {
	return &Discord{
		url:    url,
		client: newHTTPClient(timeout),
	}
}

func (d *Discord) Name() string { return "discord" }

func (d *Discord) Send(ctx context.Context, n Notification) error {
	content, err := discordText(n)
	if err != nil {
		return err
	}
	return postJSON(ctx, d.client, d.url, map[string]any{
		"content": content,
	})
}

func discordText(n Notification) (string, error) {
	switch n.Event {
	case EventExpiryWarning:
		return fmt.Sprintf(
			"%s **[%s]** Secret **%s** expires in **%d days** (%s)\nOwner: %s",
			domain.UrgencyEmoji(n.Threshold),
			n.Urgency,
			n.SecretName,
			n.DaysRemaining,
			n.ExpiryDate.Format(dateLayout),
			n.OwnerEmail,
		), nil
	case EventSummary:
		return summaryText(n, "**"), nil
	case EventTest:
		return "👋 ExpiryGuard test message. Channel is wired up correctly.", nil
	default:
		return "", fmt.Errorf("unknown event kind: %q", n.Event)
	}
}
