package model

import (
	"time"

	"github.com/google/uuid"
)

// =====================================================
// NOTIFICATION STATUSES
// =====================================================

const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

// MaxAttempts bounds delivery retries for a single notification.
const MaxAttempts = 5

// =====================================================
// NOTIFICATION ENTITY (OUTBOX ROW)
// =====================================================

// Notification is one outbox row. Business flows insert the row and enqueue
// a delivery task; the worker renders the template and sends the email.
// Delivery failures never propagate back into the flow that created the row.
type Notification struct {
	ID          uuid.UUID              `db:"id" json:"id"`
	Recipient   string                 `db:"recipient" json:"recipient"`
	TemplateKey string                 `db:"template_key" json:"template_key"`
	Payload     map[string]interface{} `db:"payload" json:"payload"`
	Status      string                 `db:"status" json:"status"`
	Attempts    int                    `db:"attempts" json:"attempts"`
	LastError   *string                `db:"last_error" json:"last_error,omitempty"`
	CreatedAt   time.Time              `db:"created_at" json:"created_at"`
	SentAt      *time.Time             `db:"sent_at" json:"sent_at,omitempty"`
}

// CanRetry reports whether the worker should attempt delivery again.
func (n *Notification) CanRetry() bool {
	return n.Status != StatusSent && n.Attempts < MaxAttempts
}
