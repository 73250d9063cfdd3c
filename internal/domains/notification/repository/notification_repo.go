package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"motoshop-backend/internal/domains/notification/model"
)

// =====================================================
// NOTIFICATION REPOSITORY IMPLEMENTATION
// =====================================================

var ErrNotificationNotFound = errors.New("notification not found")

type notificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepoInterface {
	return &notificationRepository{pool: pool}
}

// Create inserts an outbox row
func (r *notificationRepository) Create(ctx context.Context, notification *model.Notification) error {
	query := `
		INSERT INTO notifications (
			id, recipient, template_key, payload, status, attempts
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
		RETURNING created_at
	`

	payloadJSON, err := json.Marshal(notification.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal notification payload: %w", err)
	}

	err = r.pool.QueryRow(ctx, query,
		notification.ID,
		notification.Recipient,
		notification.TemplateKey,
		payloadJSON,
		notification.Status,
		notification.Attempts,
	).Scan(&notification.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

func scanNotification(row pgx.Row) (*model.Notification, error) {
	notification := &model.Notification{}
	var payloadJSON []byte

	err := row.Scan(
		&notification.ID,
		&notification.Recipient,
		&notification.TemplateKey,
		&payloadJSON,
		&notification.Status,
		&notification.Attempts,
		&notification.LastError,
		&notification.CreatedAt,
		&notification.SentAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to scan notification: %w", err)
	}

	if payloadJSON != nil {
		if err := json.Unmarshal(payloadJSON, &notification.Payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal notification payload: %w", err)
		}
	}

	return notification, nil
}

const notificationColumns = `
	id, recipient, template_key, payload, status, attempts, last_error,
	created_at, sent_at
`

// GetByID gets a notification by ID
func (r *notificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`
	return scanNotification(r.pool.QueryRow(ctx, query, id))
}

// GetPending returns undelivered notifications with attempts remaining
func (r *notificationRepository) GetPending(ctx context.Context, limit int) ([]*model.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE status IN ($1, $2)
		AND attempts < $3
		ORDER BY created_at ASC
		LIMIT $4
	`

	rows, err := r.pool.Query(ctx, query,
		model.StatusPending, model.StatusFailed, model.MaxAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*model.Notification
	for rows.Next() {
		notification, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, notification)
	}

	return notifications, nil
}

// MarkAsSent stamps successful delivery
func (r *notificationRepository) MarkAsSent(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE notifications
		SET status = $2,
			sent_at = NOW(),
			last_error = NULL
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, model.StatusSent)
	if err != nil {
		return fmt.Errorf("failed to mark notification as sent: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}

	return nil
}

// MarkAsFailed records a delivery failure and bumps the attempt count
func (r *notificationRepository) MarkAsFailed(ctx context.Context, id uuid.UUID, errorMsg string) error {
	query := `
		UPDATE notifications
		SET status = $2,
			last_error = $3,
			attempts = attempts + 1
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, model.StatusFailed, errorMsg)
	if err != nil {
		return fmt.Errorf("failed to mark notification as failed: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}

	return nil
}
