package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/covenantconf/registration-api/internal/domain"
	"github.com/covenantconf/registration-api/pkg/logger"
)

// Notifier receives a successfully persisted registration. Delivery is
// best-effort and at-most-once: implementations swallow their own
// failures and the core never waits on the outcome.
type Notifier interface {
	RegistrationCreated(ctx context.Context, reg domain.Registration)
}

// Multi fans a registration out to every configured sink.
type Multi []Notifier

func (m Multi) RegistrationCreated(ctx context.Context, reg domain.Registration) {
	for _, n := range m {
		n.RegistrationCreated(ctx, reg)
	}
}

// Webhook POSTs the registration as JSON to a configured URL. Used for
// both the generic webhook and the Google Sheets sync endpoint.
type Webhook struct {
	name   string
	url    string
	client *http.Client
}

func NewWebhook(name, url string) *Webhook {
	return &Webhook{
		name: name,
		url:  url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (w *Webhook) RegistrationCreated(ctx context.Context, reg domain.Registration) {
	payload, err := json.Marshal(reg)
	if err != nil {
		logger.WarnContext(ctx, "Failed to marshal registration for webhook", "webhook", w.name, "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		logger.WarnContext(ctx, "Failed to build webhook request", "webhook", w.name, "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		logger.WarnContext(ctx, "Webhook delivery failed", "webhook", w.name, "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		logger.WarnContext(ctx, "Webhook returned non-success status", "webhook", w.name, "status", resp.StatusCode)
	}
}
