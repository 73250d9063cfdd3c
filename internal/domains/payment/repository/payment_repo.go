package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"motoshop-backend/internal/domains/payment/model"
	"motoshop-backend/internal/domains/refund/policy"
)

// =====================================================
// PAYMENT REPOSITORY IMPLEMENTATION
// =====================================================

type paymentRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) PaymentRepoInterface {
	return &paymentRepository{pool: pool}
}

const paymentColumns = `
	id, stripe_payment_intent_id, booking_id, booking_type,
	amount, currency, status, refunded_amount, refund_policy_snapshot,
	created_at, updated_at
`

func scanPayment(row pgx.Row) (*model.Payment, error) {
	payment := &model.Payment{}
	var snapshotJSON []byte

	err := row.Scan(
		&payment.ID,
		&payment.StripePaymentIntentID,
		&payment.BookingID,
		&payment.BookingType,
		&payment.Amount,
		&payment.Currency,
		&payment.Status,
		&payment.RefundedAmount,
		&snapshotJSON,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to scan payment: %w", err)
	}

	snapshot, err := policy.FromJSON(snapshotJSON)
	if err != nil {
		return nil, err
	}
	payment.RefundPolicySnapshot = snapshot

	return payment, nil
}

func (r *paymentRepository) create(ctx context.Context, q queryer, payment *model.Payment) error {
	query := `
		INSERT INTO payments (
			id, stripe_payment_intent_id, booking_id, booking_type,
			amount, currency, status, refunded_amount, refund_policy_snapshot
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
		RETURNING created_at, updated_at
	`

	snapshotJSON, err := json.Marshal(payment.RefundPolicySnapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal policy snapshot: %w", err)
	}

	err = q.QueryRow(ctx, query,
		payment.ID,
		payment.StripePaymentIntentID,
		payment.BookingID,
		payment.BookingType,
		payment.Amount,
		payment.Currency,
		payment.Status,
		payment.RefundedAmount,
		snapshotJSON,
	).Scan(&payment.CreatedAt, &payment.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

// queryer is the subset of pgx shared by a pool and a transaction.
type queryer interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Create inserts a payment row
func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	return r.create(ctx, r.pool, payment)
}

// CreateWithTx inserts a payment row within the provided transaction
func (r *paymentRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, payment *model.Payment) error {
	return r.create(ctx, tx, payment)
}

// GetByID gets a payment by ID
func (r *paymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	return scanPayment(r.pool.QueryRow(ctx, query, id))
}

// GetByIntentID gets a payment by its gateway payment-intent reference
func (r *paymentRepository) GetByIntentID(ctx context.Context, intentID string) (*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE stripe_payment_intent_id = $1`
	return scanPayment(r.pool.QueryRow(ctx, query, intentID))
}

// GetLatestByBookingID gets the newest payment for a booking
func (r *paymentRepository) GetLatestByBookingID(ctx context.Context, bookingID uuid.UUID) (*model.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE booking_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	return scanPayment(r.pool.QueryRow(ctx, query, bookingID))
}

// GetByIntentIDForUpdate locks the payment row until tx commits. This is the
// serialization point for concurrent webhook deliveries and admin actions.
func (r *paymentRepository) GetByIntentIDForUpdate(ctx context.Context, tx pgx.Tx, intentID string) (*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE stripe_payment_intent_id = $1 FOR UPDATE`
	return scanPayment(tx.QueryRow(ctx, query, intentID))
}

// UpdateLedgerWithTx writes the reconciled refund total and status. The
// refunded amount is absolute, so replays of the same gateway event are
// no-ops at the ledger level.
func (r *paymentRepository) UpdateLedgerWithTx(
	ctx context.Context,
	tx pgx.Tx,
	id uuid.UUID,
	refundedAmount decimal.Decimal,
	status string,
) error {
	query := `
		UPDATE payments
		SET refunded_amount = $2,
			status = $3,
			updated_at = NOW()
		WHERE id = $1
	`

	result, err := tx.Exec(ctx, query, id, refundedAmount, status)
	if err != nil {
		return fmt.Errorf("failed to update payment ledger: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrPaymentNotFound
	}

	return nil
}

// UpdateStatusWithTx updates payment status within a transaction
func (r *paymentRepository) UpdateStatusWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, status string) error {
	query := `
		UPDATE payments
		SET status = $2,
			updated_at = NOW()
		WHERE id = $1
	`

	result, err := tx.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrPaymentNotFound
	}

	return nil
}

// SetPolicySnapshotIfEmptyWithTx captures the policy snapshot once. The
// WHERE clause guards immutability: an existing snapshot is never replaced.
func (r *paymentRepository) SetPolicySnapshotIfEmptyWithTx(
	ctx context.Context,
	tx pgx.Tx,
	id uuid.UUID,
	snapshot policy.Snapshot,
) error {
	query := `
		UPDATE payments
		SET refund_policy_snapshot = $2,
			updated_at = NOW()
		WHERE id = $1
		AND (refund_policy_snapshot IS NULL OR refund_policy_snapshot = '{}'::jsonb)
	`

	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal policy snapshot: %w", err)
	}

	if _, err := tx.Exec(ctx, query, id, snapshotJSON); err != nil {
		return fmt.Errorf("failed to set policy snapshot: %w", err)
	}

	return nil
}
