// Package eventlog delivers domain events to the configured sink. Delivery is
// best-effort; callers log publish failures and carry on.
package eventlog

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/lmeier/warehouse/internal/domain/models"
)

// Publisher is the narrow capability the rest of the application depends on.
type Publisher interface {
	Publish(ctx context.Context, event models.Event) error
}

// WebhookPublisher POSTs events as JSON to an HTTP endpoint.
type WebhookPublisher struct {
	httpClient *resty.Client
}

// NewWebhookPublisher builds a publisher for the given endpoint URL.
func NewWebhookPublisher(url string) *WebhookPublisher {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(url).
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second)

	return &WebhookPublisher{httpClient: restyClient}
}

// Publish implements Publisher.
func (p *WebhookPublisher) Publish(ctx context.Context, event models.Event) error {
	resp, err := p.httpClient.R().
		SetContext(ctx).
		SetBody(event).
		Post("")
	if err != nil {
		return fmt.Errorf("failed to deliver event %s: %w", event.ID, err)
	}
	if resp.IsError() {
		return fmt.Errorf("event sink rejected event %s: status %d", event.ID, resp.StatusCode())
	}
	return nil
}

// NopPublisher discards every event. Used when no sink is configured.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, models.Event) error {
	return nil
}
