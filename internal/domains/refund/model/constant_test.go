package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{StatusUnverified, StatusPending, true},
		{StatusUnverified, StatusRefunded, false},
		{StatusPending, StatusReviewedPendingApproval, true},
		{StatusPending, StatusApproved, true},
		{StatusReviewedPendingApproval, StatusApproved, true},
		{StatusReviewedPendingApproval, StatusPending, false},
		{StatusApproved, StatusRefunded, true},
		{StatusApproved, StatusPartiallyRefunded, true},
		{StatusApproved, StatusFailed, true},
		{StatusPartiallyRefunded, StatusRefunded, true},
		{StatusFailed, StatusApproved, true},
		{StatusFailed, StatusReviewedPendingApproval, true},
		{StatusFailed, StatusRefunded, true},
		{StatusRefunded, StatusApproved, false},
		{StatusRefunded, StatusFailed, false},
		{StatusRejected, StatusPending, false},
		{"bogus", StatusPending, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestRejectedReachableFromEveryNonTerminalState(t *testing.T) {
	for _, status := range ValidStatuses {
		if IsTerminalStatus(status) {
			continue
		}
		assert.True(t, CanTransition(status, StatusRejected),
			"%s should allow rejection", status)
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, IsTerminalStatus(StatusRejected))
	assert.True(t, IsTerminalStatus(StatusRefunded))

	for _, status := range []string{
		StatusUnverified, StatusPending, StatusReviewedPendingApproval,
		StatusApproved, StatusPartiallyRefunded, StatusFailed,
	} {
		assert.False(t, IsTerminalStatus(status), status)
	}

	// Unknown strings are not terminal, they are invalid.
	assert.False(t, IsTerminalStatus("bogus"))
	assert.False(t, IsValidStatus("bogus"))
}

func TestRequestPredicates(t *testing.T) {
	req := &RefundRequest{Status: StatusPending}
	assert.True(t, req.IsActive())
	assert.True(t, req.CanBeApproved())
	assert.True(t, req.CanBeRejected())
	assert.False(t, req.IsTerminal())

	req.Status = StatusRefunded
	assert.False(t, req.IsActive())
	assert.False(t, req.CanBeApproved())
	assert.False(t, req.CanBeRejected())
	assert.True(t, req.IsTerminal())

	// A failed gateway call is recoverable: the admin may retry the
	// approval, reusing the preserved amount.
	req.Status = StatusFailed
	assert.False(t, req.IsActive())
	assert.True(t, req.CanBeApproved())
	assert.True(t, req.CanBeRejected())
	assert.False(t, req.IsTerminal())
}

func TestTokenExpiry(t *testing.T) {
	now := time.Now()

	fresh := now.Add(-23 * time.Hour)
	stale := now.Add(-25 * time.Hour)

	req := &RefundRequest{TokenCreatedAt: &fresh}
	assert.False(t, req.IsTokenExpired(now))

	req.TokenCreatedAt = &stale
	assert.True(t, req.IsTokenExpired(now))

	req.TokenCreatedAt = nil
	assert.True(t, req.IsTokenExpired(now))
}

func TestMarkProcessedIsIdempotent(t *testing.T) {
	first := uuid.New()
	second := uuid.New()
	t0 := time.Now()

	req := &RefundRequest{}
	req.MarkProcessed(first, t0)
	req.MarkProcessed(second, t0.Add(time.Hour))

	assert.Equal(t, first, *req.ProcessedBy)
	assert.Equal(t, t0, *req.ProcessedAt)
}

func TestAppendStaffNote(t *testing.T) {
	req := &RefundRequest{}
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	req.AppendStaffNote("first note", at)
	req.AppendStaffNote("second note", at.Add(time.Minute))

	assert.Contains(t, req.StaffNotes, "first note")
	assert.Contains(t, req.StaffNotes, "second note")
	assert.Contains(t, req.StaffNotes, "[2025-03-01T09:00:00Z]")
}
