package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"motoshop-backend/internal/config"
	"motoshop-backend/pkg/logger"
)

// startServices verifies Redis is reachable before the worker starts taking
// tasks, then exposes the probe endpoints.
func startServices(cfg *config.Config) error {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection check failed: %w", err)
	}
	logger.Info().Str("redis", cfg.Redis.Host).Msg("Redis connection OK")

	go startHealthCheckServer()

	return nil
}

// startHealthCheckServer serves the liveness and readiness probes.
func startHealthCheckServer() {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"UP","service":"motoshop-worker"}`))
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"READY"}`))
	})

	logger.Info().Msg("Health check server listening on :9999")
	if err := http.ListenAndServe(":9999", mux); err != nil {
		logger.Error().Err(err).Msg("Health check server failed")
	}
}
