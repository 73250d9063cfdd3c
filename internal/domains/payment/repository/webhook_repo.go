package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"motoshop-backend/internal/domains/payment/model"
)

// =====================================================
// WEBHOOK EVENT REPOSITORY IMPLEMENTATION
// =====================================================

type webhookRepository struct {
	pool *pgxpool.Pool
}

func NewWebhookRepository(pool *pgxpool.Pool) WebhookRepoInterface {
	return &webhookRepository{pool: pool}
}

const uniqueViolationCode = "23505"

// Create appends the event to the audit log. This runs in its own
// transaction before any handling so the record survives handler failures.
// The unique index on stripe_event_id doubles as the idempotency check.
func (r *webhookRepository) Create(ctx context.Context, event *model.WebhookEvent) error {
	query := `
		INSERT INTO webhook_events (
			id, stripe_event_id, event_type, payload, attempts, received_at
		) VALUES (
			$1, $2, $3, $4, $5, NOW()
		)
		RETURNING received_at
	`

	err := r.pool.QueryRow(ctx, query,
		event.ID,
		event.StripeEventID,
		event.EventType,
		event.Payload,
		event.Attempts,
	).Scan(&event.ReceivedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return model.NewWebhookAlreadyProcessedError(event.StripeEventID)
		}
		return fmt.Errorf("failed to create webhook event: %w", err)
	}

	return nil
}

// GetByID gets a webhook event by ID
func (r *webhookRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.WebhookEvent, error) {
	query := `
		SELECT id, stripe_event_id, event_type, payload, attempts,
			last_error, received_at, processed_at
		FROM webhook_events
		WHERE id = $1
	`

	event := &model.WebhookEvent{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&event.ID,
		&event.StripeEventID,
		&event.EventType,
		&event.Payload,
		&event.Attempts,
		&event.LastError,
		&event.ReceivedAt,
		&event.ProcessedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrWebhookEventNotFound
		}
		return nil, fmt.Errorf("failed to get webhook event: %w", err)
	}

	return event, nil
}

// MarkAsProcessed stamps successful completion
func (r *webhookRepository) MarkAsProcessed(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE webhook_events
		SET processed_at = NOW(),
			last_error = NULL
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark webhook as processed: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrWebhookEventNotFound
	}

	return nil
}

// MarkProcessingError records a handler failure and bumps the attempt count
func (r *webhookRepository) MarkProcessingError(ctx context.Context, id uuid.UUID, errorMsg string) error {
	query := `
		UPDATE webhook_events
		SET last_error = $2,
			attempts = attempts + 1
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, errorMsg)
	if err != nil {
		return fmt.Errorf("failed to mark webhook processing error: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrWebhookEventNotFound
	}

	return nil
}

// GetFailedEvents returns unprocessed events for the retry job. Events older
// than 24 hours are abandoned rather than retried forever.
func (r *webhookRepository) GetFailedEvents(ctx context.Context, limit, maxAttempts int) ([]*model.WebhookEvent, error) {
	query := `
		SELECT id, stripe_event_id, event_type, payload, attempts,
			last_error, received_at, processed_at
		FROM webhook_events
		WHERE processed_at IS NULL
		AND last_error IS NOT NULL
		AND attempts < $2
		AND received_at > NOW() - INTERVAL '24 hours'
		ORDER BY received_at ASC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit, maxAttempts)
	if err != nil {
		return nil, fmt.Errorf("failed to get failed webhook events: %w", err)
	}
	defer rows.Close()

	var events []*model.WebhookEvent
	for rows.Next() {
		event := &model.WebhookEvent{}
		err := rows.Scan(
			&event.ID,
			&event.StripeEventID,
			&event.EventType,
			&event.Payload,
			&event.Attempts,
			&event.LastError,
			&event.ReceivedAt,
			&event.ProcessedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan webhook event: %w", err)
		}
		events = append(events, event)
	}

	return events, nil
}
