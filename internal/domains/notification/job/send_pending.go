package job

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"motoshop-backend/internal/config"
	"motoshop-backend/internal/domains/notification/service"
	"motoshop-backend/internal/shared"
	"motoshop-backend/internal/shared/utils"
	"motoshop-backend/pkg/logger"
)

// =====================================================
// SEND PENDING NOTIFICATIONS JOB HANDLER
// =====================================================

// SendPendingHandler is the periodic sweep over the outbox. It catches rows
// whose immediate delivery task was lost or failed past its asynq retries.
type SendPendingHandler struct {
	notificationService service.NotificationService
	jobConfig           config.JobConfig
}

func NewSendPendingHandler(
	notificationService service.NotificationService,
	jobConfig config.JobConfig,
) *SendPendingHandler {
	return &SendPendingHandler{
		notificationService: notificationService,
		jobConfig:           jobConfig,
	}
}

func (h *SendPendingHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload shared.SendPendingPayload
	if err := utils.UnmarshalTask(t, &payload); err != nil {
		logger.Error().Err(err).Msg("Failed to unmarshal send_pending payload, using default limit")
	}

	limit := payload.Limit
	if limit <= 0 {
		limit = h.jobConfig.SendPendingLimit
	}

	if err := h.notificationService.ProcessPending(ctx, limit); err != nil {
		return fmt.Errorf("process pending notifications: %w", err)
	}

	return nil
}
