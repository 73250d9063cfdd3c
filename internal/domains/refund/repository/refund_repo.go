package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"motoshop-backend/internal/domains/refund/model"
)

// =====================================================
// REFUND REQUEST REPOSITORY IMPLEMENTATION
// =====================================================

type refundRepository struct {
	pool *pgxpool.Pool
}

func NewRefundRepository(pool *pgxpool.Pool) RefundRepoInterface {
	return &refundRepository{pool: pool}
}

// queryer is the subset of pgx shared by a pool and a transaction.
type queryer interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const refundColumns = `
	id, booking_id, booking_type, payment_id, request_email, reason,
	rejection_reason, status, amount_to_refund, processed_by, processed_at,
	staff_notes, stripe_refund_id, is_admin_initiated,
	refund_calculation_details, verification_token, token_created_at,
	requested_at, created_at, updated_at
`

func scanRefundRequest(row pgx.Row) (*model.RefundRequest, error) {
	request := &model.RefundRequest{}
	var detailsJSON []byte

	err := row.Scan(
		&request.ID,
		&request.BookingID,
		&request.BookingType,
		&request.PaymentID,
		&request.RequestEmail,
		&request.Reason,
		&request.RejectionReason,
		&request.Status,
		&request.AmountToRefund,
		&request.ProcessedBy,
		&request.ProcessedAt,
		&request.StaffNotes,
		&request.StripeRefundID,
		&request.IsAdminInitiated,
		&detailsJSON,
		&request.VerificationToken,
		&request.TokenCreatedAt,
		&request.RequestedAt,
		&request.CreatedAt,
		&request.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrRefundRequestNotFound
		}
		return nil, fmt.Errorf("failed to scan refund request: %w", err)
	}

	if detailsJSON != nil {
		if err := json.Unmarshal(detailsJSON, &request.RefundCalculationDetails); err != nil {
			return nil, fmt.Errorf("failed to unmarshal refund_calculation_details: %w", err)
		}
	}

	return request, nil
}

func createRefundRequest(ctx context.Context, q queryer, request *model.RefundRequest) error {
	query := `
		INSERT INTO refund_requests (
			id, booking_id, booking_type, payment_id, request_email, reason,
			rejection_reason, status, amount_to_refund, processed_by,
			processed_at, staff_notes, stripe_refund_id, is_admin_initiated,
			refund_calculation_details, verification_token, token_created_at,
			requested_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18
		)
		RETURNING created_at, updated_at
	`

	detailsJSON, err := json.Marshal(request.RefundCalculationDetails)
	if err != nil {
		return fmt.Errorf("failed to marshal refund_calculation_details: %w", err)
	}

	err = q.QueryRow(ctx, query,
		request.ID,
		request.BookingID,
		request.BookingType,
		request.PaymentID,
		request.RequestEmail,
		request.Reason,
		request.RejectionReason,
		request.Status,
		request.AmountToRefund,
		request.ProcessedBy,
		request.ProcessedAt,
		request.StaffNotes,
		request.StripeRefundID,
		request.IsAdminInitiated,
		detailsJSON,
		request.VerificationToken,
		request.TokenCreatedAt,
		request.RequestedAt,
	).Scan(&request.CreatedAt, &request.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create refund request: %w", err)
	}

	return nil
}

func updateRefundRequest(ctx context.Context, q queryer, request *model.RefundRequest) error {
	query := `
		UPDATE refund_requests
		SET status = $2,
			amount_to_refund = $3,
			rejection_reason = $4,
			processed_by = $5,
			processed_at = $6,
			staff_notes = $7,
			stripe_refund_id = $8,
			refund_calculation_details = $9,
			updated_at = NOW()
		WHERE id = $1
	`

	detailsJSON, err := json.Marshal(request.RefundCalculationDetails)
	if err != nil {
		return fmt.Errorf("failed to marshal refund_calculation_details: %w", err)
	}

	result, err := q.Exec(ctx, query,
		request.ID,
		request.Status,
		request.AmountToRefund,
		request.RejectionReason,
		request.ProcessedBy,
		request.ProcessedAt,
		request.StaffNotes,
		request.StripeRefundID,
		detailsJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to update refund request: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrRefundRequestNotFound
	}

	return nil
}

// Create inserts a refund request
func (r *refundRepository) Create(ctx context.Context, request *model.RefundRequest) error {
	return createRefundRequest(ctx, r.pool, request)
}

// CreateWithTx inserts a refund request within a transaction
func (r *refundRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, request *model.RefundRequest) error {
	return createRefundRequest(ctx, tx, request)
}

// Update saves the mutable workflow fields
func (r *refundRepository) Update(ctx context.Context, request *model.RefundRequest) error {
	return updateRefundRequest(ctx, r.pool, request)
}

// UpdateWithTx saves the mutable workflow fields within a transaction
func (r *refundRepository) UpdateWithTx(ctx context.Context, tx pgx.Tx, request *model.RefundRequest) error {
	return updateRefundRequest(ctx, tx, request)
}

// GetByID gets a refund request by ID
func (r *refundRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.RefundRequest, error) {
	query := `SELECT ` + refundColumns + ` FROM refund_requests WHERE id = $1`
	return scanRefundRequest(r.pool.QueryRow(ctx, query, id))
}

// GetByVerificationToken gets a refund request by its emailed token
func (r *refundRepository) GetByVerificationToken(ctx context.Context, token uuid.UUID) (*model.RefundRequest, error) {
	query := `SELECT ` + refundColumns + ` FROM refund_requests WHERE verification_token = $1`
	return scanRefundRequest(r.pool.QueryRow(ctx, query, token))
}

const activeByPaymentQuery = `
	SELECT ` + refundColumns + `
	FROM refund_requests
	WHERE payment_id = $1
	AND status = ANY($2)
	ORDER BY created_at DESC
	LIMIT 1
`

// GetActiveByPaymentID returns the newest active request for a payment
func (r *refundRepository) GetActiveByPaymentID(ctx context.Context, paymentID uuid.UUID) (*model.RefundRequest, error) {
	return scanRefundRequest(r.pool.QueryRow(ctx, activeByPaymentQuery, paymentID, model.ActiveStatuses))
}

// GetActiveByPaymentIDWithTx is the transactional variant used during
// webhook reconciliation under the payment row lock
func (r *refundRepository) GetActiveByPaymentIDWithTx(ctx context.Context, tx pgx.Tx, paymentID uuid.UUID) (*model.RefundRequest, error) {
	return scanRefundRequest(tx.QueryRow(ctx, activeByPaymentQuery, paymentID, model.ActiveStatuses))
}

// List lists refund requests, optionally filtered by status, newest first
func (r *refundRepository) List(ctx context.Context, status string, page, limit int) ([]*model.RefundRequest, int, error) {
	baseWhere := ""
	args := []interface{}{}
	argIndex := 1

	if status != "" {
		baseWhere = fmt.Sprintf(" WHERE status = $%d", argIndex)
		args = append(args, status)
		argIndex++
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM refund_requests` + baseWhere
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count refund requests: %w", err)
	}

	offset := (page - 1) * limit
	query := `SELECT ` + refundColumns + ` FROM refund_requests` + baseWhere +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list refund requests: %w", err)
	}
	defer rows.Close()

	var requests []*model.RefundRequest
	for rows.Next() {
		request, err := scanRefundRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		requests = append(requests, request)
	}

	return requests, total, nil
}

// GetExpiredUnverified returns unverified requests whose token is older than
// the cutoff, oldest first
func (r *refundRepository) GetExpiredUnverified(ctx context.Context, olderThan time.Time, limit int) ([]*model.RefundRequest, error) {
	query := `
		SELECT ` + refundColumns + `
		FROM refund_requests
		WHERE status = $1
		AND token_created_at < $2
		ORDER BY token_created_at ASC
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, model.StatusUnverified, olderThan, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get expired unverified requests: %w", err)
	}
	defer rows.Close()

	var requests []*model.RefundRequest
	for rows.Next() {
		request, err := scanRefundRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}

	return requests, nil
}

// Delete hard-deletes a refund request. Only the expiry sweep uses this.
func (r *refundRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM refund_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete refund request: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrRefundRequestNotFound
	}

	return nil
}
