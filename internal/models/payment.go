package models

import "time"

// PaymentStatus represents the lifecycle of a monthly fee.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusOverdue PaymentStatus = "OVERDUE"
)

// Valid reports whether the status is supported.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusOverdue:
		return true
	default:
		return false
	}
}

// Payment is a monthly fee record tied to a child. Amounts are stored in
// cents to avoid floating point drift.
type Payment struct {
	ID          string        `db:"id" json:"id"`
	ChildID     string        `db:"child_id" json:"child_id"`
	AmountCents int64         `db:"amount_cents" json:"amount_cents"`
	Period      string        `db:"period" json:"period"` // YYYY-MM
	Status      PaymentStatus `db:"status" json:"status"`
	DueDate     time.Time     `db:"due_date" json:"due_date"`
	PaidAt      *time.Time    `db:"paid_at" json:"paid_at,omitempty"`
	Notes       *string       `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}

// PaymentFilter defines query filters.
type PaymentFilter struct {
	ChildID  string
	ChildIDs []string
	Status   *PaymentStatus
	Period   string
	Page     int
	PageSize int
}
