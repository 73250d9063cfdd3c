package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"motoshop-backend/internal/domains/refund/model"
)

// =====================================================
// REFUND POLICY SETTINGS REPOSITORY IMPLEMENTATION
// =====================================================

type settingsRepository struct {
	pool *pgxpool.Pool
}

func NewSettingsRepository(pool *pgxpool.Pool) SettingsRepoInterface {
	return &settingsRepository{pool: pool}
}

const settingsColumns = `
	id, deposit_enabled,
	full_payment_full_refund_days, full_payment_partial_refund_days,
	full_payment_partial_refund_percentage, full_payment_minimal_refund_days,
	full_payment_minimal_refund_percentage,
	deposit_full_refund_days, deposit_partial_refund_days,
	deposit_partial_refund_percentage, deposit_minimal_refund_days,
	deposit_minimal_refund_percentage,
	sales_enable_deposit_refund, sales_enable_deposit_refund_grace_period,
	sales_deposit_refund_grace_period_hours,
	created_at, updated_at
`

// Get returns the singleton settings row
func (r *settingsRepository) Get(ctx context.Context) (*model.RefundPolicySettings, error) {
	query := `SELECT ` + settingsColumns + ` FROM refund_policy_settings LIMIT 1`

	settings := &model.RefundPolicySettings{}
	err := r.pool.QueryRow(ctx, query).Scan(
		&settings.ID,
		&settings.DepositEnabled,
		&settings.FullPaymentFullRefundDays,
		&settings.FullPaymentPartialRefundDays,
		&settings.FullPaymentPartialRefundPercentage,
		&settings.FullPaymentMinimalRefundDays,
		&settings.FullPaymentMinimalRefundPercentage,
		&settings.DepositFullRefundDays,
		&settings.DepositPartialRefundDays,
		&settings.DepositPartialRefundPercentage,
		&settings.DepositMinimalRefundDays,
		&settings.DepositMinimalRefundPercentage,
		&settings.SalesEnableDepositRefund,
		&settings.SalesEnableDepositRefundGracePeriod,
		&settings.SalesDepositRefundGracePeriodHours,
		&settings.CreatedAt,
		&settings.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrSettingsNotFound
		}
		return nil, fmt.Errorf("failed to get refund policy settings: %w", err)
	}

	return settings, nil
}

// Create inserts the singleton row. The NOT EXISTS guard runs in the same
// statement as the insert, so two concurrent creates cannot both succeed.
func (r *settingsRepository) Create(ctx context.Context, settings *model.RefundPolicySettings) error {
	query := `
		INSERT INTO refund_policy_settings (
			id, deposit_enabled,
			full_payment_full_refund_days, full_payment_partial_refund_days,
			full_payment_partial_refund_percentage, full_payment_minimal_refund_days,
			full_payment_minimal_refund_percentage,
			deposit_full_refund_days, deposit_partial_refund_days,
			deposit_partial_refund_percentage, deposit_minimal_refund_days,
			deposit_minimal_refund_percentage,
			sales_enable_deposit_refund, sales_enable_deposit_refund_grace_period,
			sales_deposit_refund_grace_period_hours
		)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
		WHERE NOT EXISTS (SELECT 1 FROM refund_policy_settings)
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		settings.ID,
		settings.DepositEnabled,
		settings.FullPaymentFullRefundDays,
		settings.FullPaymentPartialRefundDays,
		settings.FullPaymentPartialRefundPercentage,
		settings.FullPaymentMinimalRefundDays,
		settings.FullPaymentMinimalRefundPercentage,
		settings.DepositFullRefundDays,
		settings.DepositPartialRefundDays,
		settings.DepositPartialRefundPercentage,
		settings.DepositMinimalRefundDays,
		settings.DepositMinimalRefundPercentage,
		settings.SalesEnableDepositRefund,
		settings.SalesEnableDepositRefundGracePeriod,
		settings.SalesDepositRefundGracePeriodHours,
	).Scan(&settings.CreatedAt, &settings.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.NewSettingsSingletonError()
		}
		return fmt.Errorf("failed to create refund policy settings: %w", err)
	}

	return nil
}

// Update saves the settings row
func (r *settingsRepository) Update(ctx context.Context, settings *model.RefundPolicySettings) error {
	query := `
		UPDATE refund_policy_settings
		SET deposit_enabled = $2,
			full_payment_full_refund_days = $3,
			full_payment_partial_refund_days = $4,
			full_payment_partial_refund_percentage = $5,
			full_payment_minimal_refund_days = $6,
			full_payment_minimal_refund_percentage = $7,
			deposit_full_refund_days = $8,
			deposit_partial_refund_days = $9,
			deposit_partial_refund_percentage = $10,
			deposit_minimal_refund_days = $11,
			deposit_minimal_refund_percentage = $12,
			sales_enable_deposit_refund = $13,
			sales_enable_deposit_refund_grace_period = $14,
			sales_deposit_refund_grace_period_hours = $15,
			updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		settings.ID,
		settings.DepositEnabled,
		settings.FullPaymentFullRefundDays,
		settings.FullPaymentPartialRefundDays,
		settings.FullPaymentPartialRefundPercentage,
		settings.FullPaymentMinimalRefundDays,
		settings.FullPaymentMinimalRefundPercentage,
		settings.DepositFullRefundDays,
		settings.DepositPartialRefundDays,
		settings.DepositPartialRefundPercentage,
		settings.DepositMinimalRefundDays,
		settings.DepositMinimalRefundPercentage,
		settings.SalesEnableDepositRefund,
		settings.SalesEnableDepositRefundGracePeriod,
		settings.SalesDepositRefundGracePeriodHours,
	)
	if err != nil {
		return fmt.Errorf("failed to update refund policy settings: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrSettingsNotFound
	}

	return nil
}
