package job

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"motoshop-backend/internal/domains/notification/service"
	"motoshop-backend/internal/shared"
	"motoshop-backend/internal/shared/utils"
	"motoshop-backend/pkg/logger"
)

// =====================================================
// SEND NOTIFICATION JOB HANDLER
// =====================================================

// SendNotificationHandler delivers a single outbox notification. Returning
// an error lets asynq retry with backoff; the outbox row keeps its own
// attempt counter as the final backstop.
type SendNotificationHandler struct {
	notificationService service.NotificationService
}

func NewSendNotificationHandler(notificationService service.NotificationService) *SendNotificationHandler {
	return &SendNotificationHandler{notificationService: notificationService}
}

func (h *SendNotificationHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload shared.NotificationSendPayload
	if err := utils.UnmarshalTask(t, &payload); err != nil {
		return fmt.Errorf("unmarshal notification:send payload: %w", err)
	}

	if payload.NotificationID == "" {
		logger.Warn().Msg("notification:send task with empty notification_id, dropping")
		return nil
	}

	if err := h.notificationService.Deliver(ctx, payload.NotificationID); err != nil {
		return fmt.Errorf("deliver notification %s: %w", payload.NotificationID, err)
	}

	return nil
}
