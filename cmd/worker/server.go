package main

import (
	"context"
	"time"

	"github.com/hibiken/asynq"

	"motoshop-backend/internal/config"
	"motoshop-backend/internal/shared"
	"motoshop-backend/pkg/logger"
)

// asynqServer wraps asynq.Server with a bounded shutdown.
type asynqServer struct {
	*asynq.Server
}

func setupAsynqServer(cfg *config.Config, handlers *HandlerRegistry) *asynqServer {
	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	// Webhook retries must never starve behind a backlog of emails.
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Host,
			Password: cfg.Redis.Password,
		},
		asynq.Config{
			Queues: map[string]int{
				shared.QueueCritical:     6,
				shared.QueueDefault:      3,
				shared.QueueNotification: 1,
			},
			Concurrency: 10,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error().
					Err(err).
					Str("task_type", task.Type()).
					Msg("Task failed")
			}),
		},
	)

	go func() {
		logger.Info().Msg("Worker starting")
		if err := srv.Run(mux); err != nil {
			logger.Fatal().Err(err).Msg("Worker failed")
		}
	}()

	return &asynqServer{Server: srv}
}

// Shutdown stops the server, waiting at most 30s for in-flight tasks.
func (s *asynqServer) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		s.Server.Shutdown()
		close(done)
	}()

	select {
	case <-done:
		logger.Info().Msg("Worker gracefully stopped")
	case <-ctx.Done():
		logger.Warn().Msg("Worker shutdown timeout exceeded")
	}
}
