package repository

import (
	"context"

	"github.com/google/uuid"

	"motoshop-backend/internal/domains/notification/model"
)

type NotificationRepoInterface interface {
	Create(ctx context.Context, notification *model.Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Notification, error)

	// GetPending returns undelivered notifications with attempts left,
	// oldest first.
	GetPending(ctx context.Context, limit int) ([]*model.Notification, error)

	MarkAsSent(ctx context.Context, id uuid.UUID) error
	MarkAsFailed(ctx context.Context, id uuid.UUID, errorMsg string) error
}
