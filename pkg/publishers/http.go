package publishers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/samvad-hq/mealbook/pkg/httpclient"
)

const (
	headerEventType      = "X-Mealbook-Event"
	headerIdempotencyKey = "Idempotency-Key"

	webhookSnippetLimit = 512
)

// webhookPublisher posts meal events as JSON to an HTTP endpoint.
type webhookPublisher struct {
	id     string
	cfg    HTTPPublisherConfig
	client *resty.Client
	log    Logger
}

func newHTTPPublisher(_ context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("publisher %q missing http configuration", cfg.ID)
	}
	hc := *cfg.HTTP
	if hc.Method == "" {
		hc.Method = httpDefaultMethod
	}
	if hc.TimeoutSeconds <= 0 {
		hc.TimeoutSeconds = httpDefaultTimeoutSeconds
	}

	client := httpclient.NewRestyHTTPClient(time.Duration(hc.TimeoutSeconds) * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeaders(hc.Headers)

	return &webhookPublisher{
		id:     cfg.ID,
		cfg:    hc,
		client: client,
		log:    ensureLogger(log),
	}, nil
}

func (w *webhookPublisher) ID() string   { return w.id }
func (w *webhookPublisher) Type() string { return TypeHTTP }

// Publish sends the event. The event id travels as Idempotency-Key so receivers
// can drop redeliveries.
func (w *webhookPublisher) Publish(ctx context.Context, evt Event) error {
	req := w.client.R().
		SetContext(ctx).
		SetHeader(headerEventType, evt.Type).
		SetBody(evt)
	if evt.ID != "" {
		req.SetHeader(headerIdempotencyKey, evt.ID)
	}

	resp, err := req.Execute(w.cfg.Method, w.cfg.URL)
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	if resp.IsError() {
		w.log.WarnObj("webhook rejected meal event", "publisher_http_error", map[string]any{
			"publisher_id": w.id,
			"status":       resp.StatusCode(),
			"event_type":   evt.Type,
			"meal_id":      evt.MealID,
		})
		return fmt.Errorf("webhook responded %d: %s", resp.StatusCode(), bodySnippet(resp.Body()))
	}

	w.log.DebugObj("webhook accepted meal event", "publisher_http_delivery", map[string]any{
		"publisher_id": w.id,
		"status":       resp.StatusCode(),
		"event_type":   evt.Type,
		"meal_id":      evt.MealID,
	})
	return nil
}

func bodySnippet(body []byte) string {
	if len(body) > webhookSnippetLimit {
		body = body[:webhookSnippetLimit]
	}
	return strings.TrimSpace(string(body))
}
