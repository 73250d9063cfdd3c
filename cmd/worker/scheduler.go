package main

import (
	"motoshop-backend/internal/config"
	"motoshop-backend/internal/infrastructure/queue"
	"motoshop-backend/pkg/logger"
)

// asynqScheduler wraps queue.Scheduler for lifecycle management.
type asynqScheduler struct {
	*queue.Scheduler
}

func setupScheduler(cfg *config.Config) *asynqScheduler {
	scheduler := queue.NewScheduler(cfg.Redis.Host, cfg.Redis.Password, cfg.Jobs)

	if err := scheduler.RegisterPeriodicJobs(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to register periodic jobs")
	}

	go func() {
		logger.Info().Msg("Scheduler starting")
		if err := scheduler.Start(); err != nil {
			logger.Fatal().Err(err).Msg("Scheduler failed")
		}
	}()

	return &asynqScheduler{Scheduler: scheduler}
}

func (s *asynqScheduler) Shutdown() {
	s.Scheduler.Shutdown()
	logger.Info().Msg("Scheduler stopped")
}
