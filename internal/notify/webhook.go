package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

type webhookPayload struct {
	RunID   string `json:"run_id"`
	Date    string `json:"date"`
	Subject string `json:"subject"`
	Note    string `json:"note"`
	Raw     string `json:"raw"`
}

// Webhook POSTs the briefing as JSON.
type Webhook struct {
	url    string
	client *resty.Client
}

func NewWebhook(url string, transport http.RoundTripper, timeout time.Duration) *Webhook {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := resty.NewWithClient(&http.Client{Timeout: timeout, Transport: transport}).
		SetHeader("Content-Type", "application/json")
	return &Webhook{url: url, client: client}
}

func (w *Webhook) Name() string { return ChannelWebhook }

func (w *Webhook) Send(ctx context.Context, msg Message) error {
	resp, err := w.client.R().
		SetContext(ctx).
		SetBody(webhookPayload{
			RunID:   msg.RunID,
			Date:    msg.Date.Format("2006-01-02"),
			Subject: msg.Subject,
			Note:    msg.Note,
			Raw:     msg.Raw,
		}).
		Post(w.url)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode())
	}
	return nil
}
