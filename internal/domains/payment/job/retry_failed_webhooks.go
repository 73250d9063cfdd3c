package job

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"motoshop-backend/internal/config"
	"motoshop-backend/internal/domains/payment/service"
	"motoshop-backend/internal/shared"
	"motoshop-backend/internal/shared/utils"
	"motoshop-backend/pkg/logger"
)

// =====================================================
// RETRY FAILED WEBHOOKS JOB HANDLER
// =====================================================

// RetryFailedWebhooksHandler re-drives webhook events whose handler failed
// on delivery. Stripe got its 200 already, so this job is the only path
// that finishes the reconciliation for those events.
type RetryFailedWebhooksHandler struct {
	webhookService service.WebhookService
	jobConfig      config.JobConfig
}

func NewRetryFailedWebhooksHandler(
	webhookService service.WebhookService,
	jobConfig config.JobConfig,
) *RetryFailedWebhooksHandler {
	return &RetryFailedWebhooksHandler{
		webhookService: webhookService,
		jobConfig:      jobConfig,
	}
}

func (h *RetryFailedWebhooksHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload shared.WebhookRetryFailedPayload
	if err := utils.UnmarshalTask(t, &payload); err != nil {
		logger.Error().Err(err).Msg("Failed to unmarshal retry_failed payload, using default limit")
	}

	limit := payload.Limit
	if limit <= 0 {
		limit = h.jobConfig.RetryFailedLimit
	}

	if err := h.webhookService.RetryFailedEvents(ctx, limit); err != nil {
		return fmt.Errorf("retry failed webhook events: %w", err)
	}
	return nil
}
