package service

import (
	"context"
)

// NotificationService is the outbox entry point. Business flows call
// Enqueue and move on; delivery happens in the worker. Enqueue errors are
// for the caller to log, never to fail a financial transition on.
type NotificationService interface {
	// Enqueue writes an outbox row and schedules a delivery task.
	Enqueue(ctx context.Context, recipient, templateKey string, payload map[string]interface{}) error

	// Deliver renders and sends a single notification by id.
	Deliver(ctx context.Context, notificationID string) error

	// ProcessPending delivers up to limit pending/failed notifications.
	// Per-notification failures are recorded and skipped, not returned.
	ProcessPending(ctx context.Context, limit int) error
}

// EmailProvider sends a rendered email. Implemented by the SMTP adapter in
// the email infrastructure package.
type EmailProvider interface {
	SendEmail(ctx context.Context, to, subject, body string) (messageID string, err error)
}

// TaskEnqueuer schedules asynq tasks. Wrapped in an interface so the
// service can be tested without a Redis connection.
type TaskEnqueuer interface {
	EnqueueNotificationSend(ctx context.Context, notificationID string) error
}
