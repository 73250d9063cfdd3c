package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"motoshop-backend/internal/config"
	"motoshop-backend/internal/shared"
	"motoshop-backend/pkg/logger"
)

// =====================================================
// PERIODIC JOB SCHEDULER
// =====================================================

type Scheduler struct {
	scheduler *asynq.Scheduler
	jobConfig config.JobConfig
}

func NewScheduler(redisAddress, redisPassword string, jobConfig config.JobConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: redisAddress, Password: redisPassword},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		jobConfig: jobConfig,
	}
}

// RegisterPeriodicJobs wires every cron-driven task. Cadences are coarse on
// purpose; expiry timing is approximate, not exact-to-the-second.
func (s *Scheduler) RegisterPeriodicJobs() error {
	if err := s.registerExpireUnverifiedRefundsJob(); err != nil {
		return err
	}
	if err := s.registerSendPendingNotificationsJob(); err != nil {
		return err
	}
	if err := s.registerRetryFailedWebhooksJob(); err != nil {
		return err
	}
	return nil
}

// ================================================
// JOB 1: Expire Unverified Refund Requests (hourly)
// ================================================
func (s *Scheduler) registerExpireUnverifiedRefundsJob() error {
	payload, err := json.Marshal(shared.RefundExpireUnverifiedPayload{
		OlderThanHours: s.jobConfig.UnverifiedTTLHours,
		Limit:          s.jobConfig.SweepLimit,
	})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeRefundExpireUnverified, payload)

	_, err = s.scheduler.Register(
		"0 * * * *", // hourly
		task,
		asynq.Queue(shared.QueueDefault),
		asynq.MaxRetry(2),
		asynq.Timeout(5*time.Minute),
	)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to register ExpireUnverifiedRefunds job")
		return err
	}

	logger.Info().Msg("Registered ExpireUnverifiedRefunds: hourly")
	return nil
}

// ================================================
// JOB 2: Send Pending Notifications (every 10 minutes)
// ================================================
func (s *Scheduler) registerSendPendingNotificationsJob() error {
	payload, err := json.Marshal(shared.SendPendingPayload{
		Limit: s.jobConfig.SendPendingLimit,
	})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeNotificationSendPending, payload)

	_, err = s.scheduler.Register(
		"*/10 * * * *",
		task,
		asynq.Queue(shared.QueueNotification),
		asynq.MaxRetry(3),
		asynq.Timeout(5*time.Minute),
	)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to register SendPendingNotifications job")
		return err
	}

	logger.Info().Msg("Registered SendPendingNotifications: every 10 minutes")
	return nil
}

// ================================================
// JOB 3: Retry Failed Webhook Events (every 15 minutes)
// ================================================
// Stripe already received a 200 for these deliveries, so this retry loop
// is the only path that completes their reconciliation.
func (s *Scheduler) registerRetryFailedWebhooksJob() error {
	payload, err := json.Marshal(shared.WebhookRetryFailedPayload{
		Limit: s.jobConfig.RetryFailedLimit,
	})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeWebhookRetryFailed, payload)

	_, err = s.scheduler.Register(
		"*/15 * * * *",
		task,
		asynq.Queue(shared.QueueCritical),
		asynq.MaxRetry(2),
		asynq.Timeout(5*time.Minute),
	)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to register RetryFailedWebhooks job")
		return err
	}

	logger.Info().Msg("Registered RetryFailedWebhooks: every 15 minutes")
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
