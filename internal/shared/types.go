package shared

// Asynq task types. Namespaced by domain so the worker mux stays readable.
const (
	TypeNotificationSend        = "notification:send"
	TypeNotificationSendPending = "notification:send_pending"
	TypeRefundExpireUnverified  = "refund:expire_unverified"
	TypeWebhookRetryFailed      = "webhook:retry_failed"
)

// Queue names with their relative priorities configured in cmd/worker.
const (
	QueueCritical     = "critical"
	QueueDefault      = "default"
	QueueNotification = "notification"
)

// RefundExpireUnverifiedPayload is the payload for the periodic sweep of
// unverified refund requests.
type RefundExpireUnverifiedPayload struct {
	OlderThanHours int `json:"older_than_hours"`
	Limit          int `json:"limit"`
}

// WebhookRetryFailedPayload is the payload for the failed-webhook retry job.
type WebhookRetryFailedPayload struct {
	Limit int `json:"limit"`
}

// NotificationSendPayload is the payload for a single outbox delivery.
type NotificationSendPayload struct {
	NotificationID string `json:"notification_id"`
}

// SendPendingPayload is the payload for the pending-notification batch job.
type SendPendingPayload struct {
	Limit int `json:"limit"`
}
