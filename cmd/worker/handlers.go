package main

import (
	"github.com/hibiken/asynq"

	notifjob "motoshop-backend/internal/domains/notification/job"
	paymentjob "motoshop-backend/internal/domains/payment/job"
	refundjob "motoshop-backend/internal/domains/refund/job"
	"motoshop-backend/internal/shared"
	"motoshop-backend/pkg/container"
)

// HandlerRegistry holds all job handlers.
type HandlerRegistry struct {
	sendNotification *notifjob.SendNotificationHandler
	sendPending      *notifjob.SendPendingHandler
	expireUnverified *refundjob.ExpireUnverifiedHandler
	retryWebhooks    *paymentjob.RetryFailedWebhooksHandler
}

func newHandlerRegistry(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		sendNotification: c.SendNotificationHandler,
		sendPending:      c.SendPendingHandler,
		expireUnverified: c.ExpireUnverifiedHandler,
		retryWebhooks:    c.RetryFailedWebhooksHandler,
	}
}

// RegisterHandlers binds every task type to its handler.
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	// Notification delivery
	mux.HandleFunc(shared.TypeNotificationSend, h.sendNotification.ProcessTask)
	mux.HandleFunc(shared.TypeNotificationSendPending, h.sendPending.ProcessTask)

	// Refund maintenance
	mux.HandleFunc(shared.TypeRefundExpireUnverified, h.expireUnverified.ProcessTask)

	// Webhook reconciliation
	mux.HandleFunc(shared.TypeWebhookRetryFailed, h.retryWebhooks.ProcessTask)
}
