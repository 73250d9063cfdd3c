package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"motoshop-backend/internal/domains/booking/model"
)

// BookingRepository reads and mutates booking rows. The refund ledger only
// ever writes amount_paid, payment_status and status; everything else is
// owned by the booking flows outside this system.
type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	GetByReference(ctx context.Context, reference string) (*model.Booking, error)

	// GetByIDForUpdateWithTx locks the booking row for the duration of tx.
	GetByIDForUpdateWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Booking, error)

	// UpdateLedgerWithTx applies a ledger recomputation inside tx.
	UpdateLedgerWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, amountPaid decimal.Decimal, paymentStatus, status string) error

	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, paymentStatus string) error
}
