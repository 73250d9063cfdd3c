package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"motoshop-backend/internal/domains/refund/model"
	"motoshop-backend/internal/domains/refund/repository"
	"motoshop-backend/pkg/cache"
	"motoshop-backend/pkg/logger"
)

// =====================================================
// SETTINGS SERVICE
// =====================================================

const (
	settingsCacheKey = "refund:settings"
	settingsCacheTTL = 10 * time.Minute
)

type settingsService struct {
	settingsRepo repository.SettingsRepoInterface
	cache        cache.Cache
}

func NewSettingsService(settingsRepo repository.SettingsRepoInterface, cacheClient cache.Cache) SettingsService {
	return &settingsService{
		settingsRepo: settingsRepo,
		cache:        cacheClient,
	}
}

// GetSettings returns the singleton, creating it with defaults on first
// access. Reads go through the cache; cache failures fall back to the
// database.
func (s *settingsService) GetSettings(ctx context.Context) (*model.RefundPolicySettings, error) {
	if cached, found, err := s.cache.Get(ctx, settingsCacheKey); err == nil && found {
		var settings model.RefundPolicySettings
		if err := json.Unmarshal([]byte(cached), &settings); err == nil {
			return &settings, nil
		}
		// Corrupt cache entry; drop it and fall through to the database.
		_ = s.cache.Delete(ctx, settingsCacheKey)
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		if !errors.Is(err, model.ErrSettingsNotFound) {
			return nil, err
		}
		settings = DefaultSettings()
		if err := s.settingsRepo.Create(ctx, settings); err != nil {
			// A concurrent first access may have won the insert.
			if !errors.Is(err, model.ErrSettingsSingleton) {
				return nil, err
			}
			settings, err = s.settingsRepo.Get(ctx)
			if err != nil {
				return nil, err
			}
		}
	}

	s.cacheSettings(ctx, settings)
	return settings, nil
}

func (s *settingsService) UpdateSettings(ctx context.Context, req model.UpdateRefundSettingsRequest) (*model.RefundPolicySettings, error) {
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	req.Apply(settings)
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	if err := s.settingsRepo.Update(ctx, settings); err != nil {
		return nil, err
	}

	if err := s.cache.Delete(ctx, settingsCacheKey); err != nil {
		logger.Warn().Err(err).Msg("failed to invalidate refund settings cache")
	}
	return settings, nil
}

func (s *settingsService) cacheSettings(ctx context.Context, settings *model.RefundPolicySettings) {
	encoded, err := json.Marshal(settings)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, settingsCacheKey, string(encoded), settingsCacheTTL); err != nil {
		logger.Warn().Err(err).Msg("failed to cache refund settings")
	}
}

// DefaultSettings is the seed configuration used when no settings row
// exists yet: a 7/3/1-day full-payment track at 50%/10%, a 14/7/3-day
// deposit track at 50%/10%, and a 24 hour sales grace period.
func DefaultSettings() *model.RefundPolicySettings {
	return &model.RefundPolicySettings{
		ID:             uuid.New(),
		DepositEnabled: true,

		FullPaymentFullRefundDays:          7,
		FullPaymentPartialRefundDays:       3,
		FullPaymentPartialRefundPercentage: decimal.NewFromInt(50),
		FullPaymentMinimalRefundDays:       1,
		FullPaymentMinimalRefundPercentage: decimal.NewFromInt(10),

		DepositFullRefundDays:          14,
		DepositPartialRefundDays:       7,
		DepositPartialRefundPercentage: decimal.NewFromInt(50),
		DepositMinimalRefundDays:       3,
		DepositMinimalRefundPercentage: decimal.NewFromInt(10),

		SalesEnableDepositRefund:            true,
		SalesEnableDepositRefundGracePeriod: true,
		SalesDepositRefundGracePeriodHours:  24,
	}
}
