package signal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"convene/internal/agent"
)

// WebhookTransport POSTs the notification envelope to a per-agent
// endpoint. Recipients without a configured endpoint are considered
// offline and skipped; they will observe the state change through the
// store once it propagates.
type WebhookTransport struct {
	endpoints map[agent.ID]string
	client    *http.Client
}

func NewWebhookTransport(endpoints map[agent.ID]string, timeout time.Duration) *WebhookTransport {
	return &WebhookTransport{
		endpoints: endpoints,
		client:    &http.Client{Timeout: timeout},
	}
}

func (t *WebhookTransport) Send(ctx context.Context, recipients []agent.ID, n Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encoding notification: %w", err)
	}

	var errs []error
	for _, recipient := range recipients {
		endpoint, online := t.endpoints[recipient]
		if !online {
			continue
		}
		if err := t.post(ctx, endpoint, body); err != nil {
			errs = append(errs, fmt.Errorf("delivering to %s: %w", recipient, err))
		}
	}
	return errors.Join(errs...)
}

func (t *WebhookTransport) post(ctx context.Context, endpoint string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
