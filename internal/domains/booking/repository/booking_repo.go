package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"motoshop-backend/internal/domains/booking/model"
)

// =====================================================
// BOOKING REPOSITORY IMPLEMENTATION
// =====================================================

type bookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) BookingRepository {
	return &bookingRepository{pool: pool}
}

const bookingColumns = `
	id, reference, booking_type, user_id, customer_name, customer_email,
	status, payment_method, payment_status, amount, amount_paid,
	pickup_at, return_at, dropoff_at, estimated_pickup_at, appointment_at,
	created_at, updated_at
`

func scanBooking(row pgx.Row) (*model.Booking, error) {
	booking := &model.Booking{}
	err := row.Scan(
		&booking.ID,
		&booking.Reference,
		&booking.Type,
		&booking.UserID,
		&booking.CustomerName,
		&booking.CustomerEmail,
		&booking.Status,
		&booking.PaymentMethod,
		&booking.PaymentStatus,
		&booking.Amount,
		&booking.AmountPaid,
		&booking.PickupAt,
		&booking.ReturnAt,
		&booking.DropoffAt,
		&booking.EstimatedPickupAt,
		&booking.AppointmentAt,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to scan booking: %w", err)
	}
	return booking, nil
}

// Create inserts a booking row
func (r *bookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	query := `
		INSERT INTO bookings (
			id, reference, booking_type, user_id, customer_name, customer_email,
			status, payment_method, payment_status, amount, amount_paid,
			pickup_at, return_at, dropoff_at, estimated_pickup_at, appointment_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
		)
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		booking.ID,
		booking.Reference,
		booking.Type,
		booking.UserID,
		booking.CustomerName,
		booking.CustomerEmail,
		booking.Status,
		booking.PaymentMethod,
		booking.PaymentStatus,
		booking.Amount,
		booking.AmountPaid,
		booking.PickupAt,
		booking.ReturnAt,
		booking.DropoffAt,
		booking.EstimatedPickupAt,
		booking.AppointmentAt,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

// GetByID gets a booking by ID
func (r *bookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	return scanBooking(r.pool.QueryRow(ctx, query, id))
}

// GetByReference gets a booking by its customer-facing reference
func (r *bookingRepository) GetByReference(ctx context.Context, reference string) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE reference = $1`
	return scanBooking(r.pool.QueryRow(ctx, query, reference))
}

// GetByIDForUpdateWithTx locks the booking row until tx commits
func (r *bookingRepository) GetByIDForUpdateWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`
	return scanBooking(tx.QueryRow(ctx, query, id))
}

// UpdateLedgerWithTx writes the recomputed ledger fields within a transaction
func (r *bookingRepository) UpdateLedgerWithTx(
	ctx context.Context,
	tx pgx.Tx,
	id uuid.UUID,
	amountPaid decimal.Decimal,
	paymentStatus, status string,
) error {
	query := `
		UPDATE bookings
		SET amount_paid = $2,
			payment_status = $3,
			status = $4,
			updated_at = NOW()
		WHERE id = $1
	`

	result, err := tx.Exec(ctx, query, id, amountPaid, paymentStatus, status)
	if err != nil {
		return fmt.Errorf("failed to update booking ledger: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrBookingNotFound
	}

	return nil
}

// UpdatePaymentStatus updates only the payment status
func (r *bookingRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, paymentStatus string) error {
	query := `
		UPDATE bookings
		SET payment_status = $2,
			updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, paymentStatus)
	if err != nil {
		return fmt.Errorf("failed to update booking payment status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrBookingNotFound
	}

	return nil
}
