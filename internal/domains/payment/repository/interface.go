package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"motoshop-backend/internal/domains/payment/model"
	"motoshop-backend/internal/domains/refund/policy"
)

// =====================================================
// REPOSITORY INTERFACES
// =====================================================

// TransactionManager owns the transaction lifecycle. Webhook processing and
// admin approvals span multiple repositories inside one transaction.
type TransactionManager interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
	CommitTx(ctx context.Context, tx pgx.Tx) error
	RollbackTx(ctx context.Context, tx pgx.Tx) error
}

type PaymentRepoInterface interface {
	Create(ctx context.Context, payment *model.Payment) error
	CreateWithTx(ctx context.Context, tx pgx.Tx, payment *model.Payment) error

	GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	GetByIntentID(ctx context.Context, intentID string) (*model.Payment, error)

	// GetLatestByBookingID returns the newest payment for a booking.
	GetLatestByBookingID(ctx context.Context, bookingID uuid.UUID) (*model.Payment, error)

	// GetByIntentIDForUpdate locks the payment row for the duration of tx.
	// Every webhook-driven mutation goes through this lock.
	GetByIntentIDForUpdate(ctx context.Context, tx pgx.Tx, intentID string) (*model.Payment, error)

	// UpdateLedgerWithTx writes the reconciled refunded_amount and status.
	UpdateLedgerWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, refundedAmount decimal.Decimal, status string) error

	UpdateStatusWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, status string) error

	// SetPolicySnapshotIfEmptyWithTx captures the policy snapshot exactly
	// once; a payment that already carries one is left untouched.
	SetPolicySnapshotIfEmptyWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, snapshot policy.Snapshot) error
}

type WebhookRepoInterface interface {
	// Create appends the event to the audit log. A duplicate
	// stripe_event_id returns model.ErrWebhookAlreadyProcessed.
	Create(ctx context.Context, event *model.WebhookEvent) error

	GetByID(ctx context.Context, id uuid.UUID) (*model.WebhookEvent, error)
	MarkAsProcessed(ctx context.Context, id uuid.UUID) error
	MarkProcessingError(ctx context.Context, id uuid.UUID, errorMsg string) error

	// GetFailedEvents returns unprocessed events for the retry job, oldest
	// first, skipping events that exhausted their attempts.
	GetFailedEvents(ctx context.Context, limit, maxAttempts int) ([]*model.WebhookEvent, error)
}
