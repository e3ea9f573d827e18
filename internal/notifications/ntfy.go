package notifications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const userAgent = "cinewatch/0.1"

// Ntfy publishes plain-text messages to an ntfy topic URL.
type Ntfy struct {
	endpoint string
	client   *resty.Client
}

// NewNtfy targets endpoint, the full topic URL (https://ntfy.sh/topic).
func NewNtfy(endpoint string, timeout time.Duration) *Ntfy {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent)
	return &Ntfy{endpoint: endpoint, client: client}
}

func (*Ntfy) Name() string { return "ntfy" }

func (n *Ntfy) Send(ctx context.Context, msg Message) error {
	req := n.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "text/plain; charset=utf-8").
		SetBody(msg.Text)
	if msg.Title != "" {
		req.SetHeader("Title", msg.Title)
	}
	if len(msg.Tags) > 0 {
		req.SetHeader("Tags", strings.Join(msg.Tags, ","))
	}
	if msg.Priority != "" && msg.Priority != "default" {
		req.SetHeader("Priority", msg.Priority)
	}
	if msg.ClickURL != "" {
		req.SetHeader("Click", msg.ClickURL)
	}

	resp, err := req.Post(n.endpoint)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	if resp.StatusCode() >= 300 {
		body := resp.String()
		if len(body) > 2048 {
			body = body[:2048]
		}
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode(), strings.TrimSpace(body))
	}
	return nil
}
