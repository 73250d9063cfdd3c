package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"motoshop-backend/internal/domains/refund/model"
)

// =====================================================
// REPOSITORY INTERFACES
// =====================================================

type RefundRepoInterface interface {
	Create(ctx context.Context, request *model.RefundRequest) error
	CreateWithTx(ctx context.Context, tx pgx.Tx, request *model.RefundRequest) error

	GetByID(ctx context.Context, id uuid.UUID) (*model.RefundRequest, error)
	GetByVerificationToken(ctx context.Context, token uuid.UUID) (*model.RefundRequest, error)

	// GetActiveByPaymentID returns the newest request in an active status
	// for the payment, or ErrRefundRequestNotFound. Both the duplicate
	// guard and the webhook find-or-create use this.
	GetActiveByPaymentID(ctx context.Context, paymentID uuid.UUID) (*model.RefundRequest, error)
	GetActiveByPaymentIDWithTx(ctx context.Context, tx pgx.Tx, paymentID uuid.UUID) (*model.RefundRequest, error)

	Update(ctx context.Context, request *model.RefundRequest) error
	UpdateWithTx(ctx context.Context, tx pgx.Tx, request *model.RefundRequest) error

	List(ctx context.Context, status string, page, limit int) ([]*model.RefundRequest, int, error)

	// GetExpiredUnverified returns stale unverified requests for the sweep.
	GetExpiredUnverified(ctx context.Context, olderThan time.Time, limit int) ([]*model.RefundRequest, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type SettingsRepoInterface interface {
	// Get returns the singleton row, or ErrSettingsNotFound.
	Get(ctx context.Context) (*model.RefundPolicySettings, error)

	// Create inserts the singleton; a second insert fails with
	// ErrSettingsSingleton.
	Create(ctx context.Context, settings *model.RefundPolicySettings) error

	Update(ctx context.Context, settings *model.RefundPolicySettings) error
}
