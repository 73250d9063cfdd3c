package service

import (
	"context"

	"github.com/google/uuid"

	"motoshop-backend/internal/domains/refund/model"
)

// RefundService drives the refund request lifecycle from user submission
// through admin decision and gateway initiation. Final settlement arrives
// through the webhook processor, not through this service.
type RefundService interface {
	// CreateUserRefundRequest handles the public refund form. The request
	// starts unverified and a verification link is emailed.
	CreateUserRefundRequest(ctx context.Context, req model.CreateRefundRequest) (*model.RefundRequestResponse, error)

	// VerifyRefundRequest consumes an emailed verification token, runs the
	// policy engine against the payment's snapshot and moves the request to
	// pending.
	VerifyRefundRequest(ctx context.Context, token uuid.UUID) (*model.RefundRequestResponse, error)

	// AdminCreateRefundRequest skips verification and starts pending.
	AdminCreateRefundRequest(ctx context.Context, adminID uuid.UUID, req model.AdminCreateRefundRequest) (*model.RefundRequestResponse, error)

	GetRefundRequest(ctx context.Context, id uuid.UUID) (*model.RefundRequestResponse, error)
	ListRefundRequests(ctx context.Context, status string, page, limit int) ([]*model.RefundRequestResponse, int, error)

	// ReviewRefund moves pending to reviewed_pending_approval, optionally
	// adjusting amount_to_refund and appending staff notes.
	ReviewRefund(ctx context.Context, id, adminID uuid.UUID, req model.ReviewRefundRequest) (*model.RefundRequestResponse, error)

	// ApproveRefund initiates the gateway refund. The approved state is
	// persisted before the network call; a gateway failure moves the
	// request to failed with the error recorded in staff notes.
	ApproveRefund(ctx context.Context, id, adminID uuid.UUID) (*model.RefundRequestResponse, error)

	RejectRefund(ctx context.Context, id, adminID uuid.UUID, req model.RejectRefundRequest) (*model.RefundRequestResponse, error)

	// ExpireUnverifiedRequests deletes unverified requests older than the
	// TTL and best-effort notifies each requester. Returns the number of
	// requests removed.
	ExpireUnverifiedRequests(ctx context.Context, olderThanHours, limit int) (int, error)
}

// SettingsService manages the refund policy settings singleton, with a
// cache in front of the repository.
type SettingsService interface {
	GetSettings(ctx context.Context) (*model.RefundPolicySettings, error)
	UpdateSettings(ctx context.Context, req model.UpdateRefundSettingsRequest) (*model.RefundPolicySettings, error)
}
