package queue

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"

	"motoshop-backend/internal/shared"
)

// =====================================================
// TASK CLIENT
// =====================================================

// Client wraps the asynq client for task enqueueing from business flows.
// It implements the notification service's TaskEnqueuer.
type Client struct {
	client *asynq.Client
}

func NewClient(redisAddress, redisPassword string) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     redisAddress,
			Password: redisPassword,
		}),
	}
}

// EnqueueNotificationSend schedules the delivery of one outbox row.
func (c *Client) EnqueueNotificationSend(ctx context.Context, notificationID string) error {
	payload, err := json.Marshal(shared.NotificationSendPayload{NotificationID: notificationID})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeNotificationSend, payload)
	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(shared.QueueNotification), asynq.MaxRetry(5))
	return err
}

func (c *Client) Close() error {
	return c.client.Close()
}
