package service

import (
	"context"
)

// WebhookService reconciles inbound gateway events against the payment
// ledger and refund requests.
type WebhookService interface {
	// ProcessWebhook verifies, records and handles one delivery. A
	// signature or payload failure returns ErrInvalidSignature /
	// ErrInvalidPayload so the handler can answer 400; every other outcome,
	// including handler failures after the audit row is written, returns
	// nil so the gateway sees 200 and does not retry-storm.
	ProcessWebhook(ctx context.Context, payload []byte, sigHeader string) error

	// RetryFailedEvents re-runs up to limit previously failed events.
	// Per-event failures are recorded and skipped.
	RetryFailedEvents(ctx context.Context, limit int) error
}
