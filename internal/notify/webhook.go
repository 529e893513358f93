package notify

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"dcabot/internal/api"
)

// Webhook posts {"title","body","text"} JSON to a URL. The text field makes
// the payload acceptable to Slack-compatible incoming webhooks.
type Webhook struct {
	client *api.Client
	path   string
}

type webhookPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Text  string `json:"text"`
}

func NewWebhook(rawURL string) (*Webhook, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("webhook url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.New("webhook url must be http(s)")
	}
	path := u.RequestURI()
	base := u.Scheme + "://" + u.Host
	return &Webhook{
		client: api.NewClient(api.WithBaseURL(base), api.WithTimeout(15*time.Second)),
		path:   path,
	}, nil
}

func (w *Webhook) Publish(ctx context.Context, title, body string) error {
	_, err := w.client.POST(ctx, w.path, webhookPayload{
		Title: title,
		Body:  body,
		Text:  "*" + title + "*\n" + body,
	})
	if err != nil {
		return fmt.Errorf("webhook: %w", err)
	}
	return nil
}
