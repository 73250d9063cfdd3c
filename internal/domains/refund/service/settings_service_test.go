package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motoshop-backend/internal/domains/refund/model"
)

type memSettingsRepo struct {
	settings *model.RefundPolicySettings
	getCalls int
}

func (m *memSettingsRepo) Get(ctx context.Context) (*model.RefundPolicySettings, error) {
	m.getCalls++
	if m.settings == nil {
		return nil, model.ErrSettingsNotFound
	}
	return m.settings, nil
}

func (m *memSettingsRepo) Create(ctx context.Context, settings *model.RefundPolicySettings) error {
	if m.settings != nil {
		return model.NewSettingsSingletonError()
	}
	m.settings = settings
	return nil
}

func (m *memSettingsRepo) Update(ctx context.Context, settings *model.RefundPolicySettings) error {
	if m.settings == nil {
		return model.ErrSettingsNotFound
	}
	m.settings = settings
	return nil
}

type memCache struct {
	values map[string]string
}

func newMemCache() *memCache {
	return &memCache{values: map[string]string{}}
}

func (m *memCache) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.values[key] = value
	return nil
}

func (m *memCache) Delete(ctx context.Context, key string) error {
	delete(m.values, key)
	return nil
}

func (m *memCache) DeletePattern(ctx context.Context, pattern string) error { return nil }

func (m *memCache) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.values[key]
	return ok, nil
}

func (m *memCache) Ping(ctx context.Context) error { return nil }

func (m *memCache) Close() error { return nil }

func TestGetSettingsCreatesDefaults(t *testing.T) {
	repo := &memSettingsRepo{}
	svc := NewSettingsService(repo, newMemCache())

	settings, err := svc.GetSettings(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 7, settings.FullPaymentFullRefundDays)
	assert.Equal(t, 24, settings.SalesDepositRefundGracePeriodHours)
	require.NotNil(t, repo.settings, "defaults persisted on first access")
}

func TestGetSettingsServedFromCache(t *testing.T) {
	repo := &memSettingsRepo{}
	cacheClient := newMemCache()
	svc := NewSettingsService(repo, cacheClient)

	_, err := svc.GetSettings(context.Background())
	require.NoError(t, err)
	callsAfterFirst := repo.getCalls

	_, err = svc.GetSettings(context.Background())
	require.NoError(t, err)

	assert.Equal(t, callsAfterFirst, repo.getCalls, "second read never hits the repository")
	_, cached := cacheClient.values[settingsCacheKey]
	assert.True(t, cached)
}

func TestUpdateSettingsValidatesOrdering(t *testing.T) {
	repo := &memSettingsRepo{settings: DefaultSettings()}
	svc := NewSettingsService(repo, newMemCache())

	req := model.UpdateRefundSettingsRequest{
		FullPaymentFullRefundDays:          2,
		FullPaymentPartialRefundDays:       5,
		FullPaymentPartialRefundPercentage: decimal.NewFromInt(50),
		FullPaymentMinimalRefundDays:       1,
		FullPaymentMinimalRefundPercentage: decimal.NewFromInt(10),
	}

	_, err := svc.UpdateSettings(context.Background(), req)

	require.Error(t, err)
	var refundErr *model.RefundError
	require.True(t, errors.As(err, &refundErr))
	assert.Equal(t, model.ErrCodeSettingsInvalid, refundErr.Code)
}

func TestUpdateSettingsInvalidatesCache(t *testing.T) {
	repo := &memSettingsRepo{settings: DefaultSettings()}
	cacheClient := newMemCache()
	svc := NewSettingsService(repo, cacheClient)

	_, err := svc.GetSettings(context.Background())
	require.NoError(t, err)
	require.Contains(t, cacheClient.values, settingsCacheKey)

	req := model.UpdateRefundSettingsRequest{
		DepositEnabled:                     true,
		FullPaymentFullRefundDays:          10,
		FullPaymentPartialRefundDays:       5,
		FullPaymentPartialRefundPercentage: decimal.NewFromInt(60),
		FullPaymentMinimalRefundDays:       2,
		FullPaymentMinimalRefundPercentage: decimal.NewFromInt(15),
		DepositFullRefundDays:              14,
		DepositPartialRefundDays:           7,
		DepositPartialRefundPercentage:     decimal.NewFromInt(25),
		DepositMinimalRefundDays:           3,
		DepositMinimalRefundPercentage:     decimal.NewFromInt(5),
		SalesEnableDepositRefund:           true,
		SalesDepositRefundGracePeriodHours: 48,
	}
	updated, err := svc.UpdateSettings(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 10, updated.FullPaymentFullRefundDays)
	assert.Equal(t, 48, updated.SalesDepositRefundGracePeriodHours)
	assert.NotContains(t, cacheClient.values, settingsCacheKey, "stale cache entry removed")
}
