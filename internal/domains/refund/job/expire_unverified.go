package job

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"motoshop-backend/internal/config"
	"motoshop-backend/internal/domains/refund/service"
	"motoshop-backend/internal/shared"
	"motoshop-backend/internal/shared/utils"
	"motoshop-backend/pkg/logger"
)

// =====================================================
// EXPIRE UNVERIFIED REFUND REQUESTS JOB HANDLER
// =====================================================

// ExpireUnverifiedHandler runs the periodic sweep that deletes unverified
// refund requests whose verification token has lapsed. The customer-visible
// timing is approximate; the sweep cadence, not the TTL, decides exactly
// when a stale request disappears.
type ExpireUnverifiedHandler struct {
	refundService service.RefundService
	jobConfig     config.JobConfig
}

func NewExpireUnverifiedHandler(
	refundService service.RefundService,
	jobConfig config.JobConfig,
) *ExpireUnverifiedHandler {
	return &ExpireUnverifiedHandler{
		refundService: refundService,
		jobConfig:     jobConfig,
	}
}

func (h *ExpireUnverifiedHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload shared.RefundExpireUnverifiedPayload
	if err := utils.UnmarshalTask(t, &payload); err != nil {
		logger.Error().Err(err).Msg("Failed to unmarshal expire_unverified payload, using defaults")
	}

	olderThanHours := payload.OlderThanHours
	if olderThanHours <= 0 {
		olderThanHours = h.jobConfig.UnverifiedTTLHours
	}
	limit := payload.Limit
	if limit <= 0 {
		limit = h.jobConfig.SweepLimit
	}

	removed, err := h.refundService.ExpireUnverifiedRequests(ctx, olderThanHours, limit)
	if err != nil {
		return fmt.Errorf("expire unverified refund requests: %w", err)
	}

	if removed > 0 {
		logger.Info().Int("removed", removed).Msg("unverified refund request sweep complete")
	}
	return nil
}
