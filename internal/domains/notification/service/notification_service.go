package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"motoshop-backend/internal/domains/notification/model"
	"motoshop-backend/internal/domains/notification/repository"
	"motoshop-backend/pkg/logger"
)

// =====================================================
// NOTIFICATION SERVICE IMPLEMENTATION
// =====================================================

type notificationService struct {
	notificationRepo repository.NotificationRepoInterface
	emailProvider    EmailProvider
	enqueuer         TaskEnqueuer
}

func NewNotificationService(
	notificationRepo repository.NotificationRepoInterface,
	emailProvider EmailProvider,
	enqueuer TaskEnqueuer,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		emailProvider:    emailProvider,
		enqueuer:         enqueuer,
	}
}

// Enqueue writes the outbox row, then schedules delivery. A failed task
// enqueue is tolerable: the send_pending sweep picks the row up later.
func (s *notificationService) Enqueue(ctx context.Context, recipient, templateKey string, payload map[string]interface{}) error {
	notification := &model.Notification{
		ID:          uuid.New(),
		Recipient:   recipient,
		TemplateKey: templateKey,
		Payload:     payload,
		Status:      model.StatusPending,
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	if err := s.enqueuer.EnqueueNotificationSend(ctx, notification.ID.String()); err != nil {
		logger.Warn().
			Err(err).
			Str("notification_id", notification.ID.String()).
			Str("template_key", templateKey).
			Msg("Failed to enqueue notification delivery, sweep will retry")
	}

	return nil
}

// Deliver renders and sends one notification.
func (s *notificationService) Deliver(ctx context.Context, notificationID string) error {
	id, err := uuid.Parse(notificationID)
	if err != nil {
		return fmt.Errorf("invalid notification id %q: %w", notificationID, err)
	}

	notification, err := s.notificationRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get notification: %w", err)
	}

	if notification.Status == model.StatusSent {
		return nil
	}

	return s.send(ctx, notification)
}

// ProcessPending delivers pending/failed notifications in a batch. A single
// bad notification is recorded and skipped so the batch keeps moving.
func (s *notificationService) ProcessPending(ctx context.Context, limit int) error {
	notifications, err := s.notificationRepo.GetPending(ctx, limit)
	if err != nil {
		return fmt.Errorf("get pending notifications: %w", err)
	}

	sent, failed := 0, 0
	for _, notification := range notifications {
		if err := s.send(ctx, notification); err != nil {
			failed++
			continue
		}
		sent++
	}

	logger.Info().
		Int("sent", sent).
		Int("failed", failed).
		Msg("Processed pending notifications")

	return nil
}

func (s *notificationService) send(ctx context.Context, notification *model.Notification) error {
	subject, body := renderTemplate(notification.TemplateKey, notification.Payload)

	if _, err := s.emailProvider.SendEmail(ctx, notification.Recipient, subject, body); err != nil {
		logger.Error().
			Err(err).
			Str("notification_id", notification.ID.String()).
			Str("template_key", notification.TemplateKey).
			Msg("Notification delivery failed")

		if markErr := s.notificationRepo.MarkAsFailed(ctx, notification.ID, err.Error()); markErr != nil {
			logger.Error().Err(markErr).Msg("Failed to record notification failure")
		}
		return err
	}

	if err := s.notificationRepo.MarkAsSent(ctx, notification.ID); err != nil {
		return fmt.Errorf("mark notification sent: %w", err)
	}

	return nil
}
