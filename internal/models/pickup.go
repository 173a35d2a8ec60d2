package models

import "time"

// AuthorizedPerson is someone a parent has cleared to pick up a child.
type AuthorizedPerson struct {
	ID           string    `db:"id" json:"id"`
	ChildID      string    `db:"child_id" json:"child_id"`
	FullName     string    `db:"full_name" json:"full_name"`
	Relationship string    `db:"relationship" json:"relationship"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// PickupRecord documents an actual child release.
type PickupRecord struct {
	ID         string    `db:"id" json:"id"`
	ChildID    string    `db:"child_id" json:"child_id"`
	PickedUpBy string    `db:"picked_up_by" json:"picked_up_by"`
	PickupTime time.Time `db:"pickup_time" json:"pickup_time"`
	RecordedBy string    `db:"recorded_by" json:"recorded_by"`
	Notes      *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// DailyPickupCode is a single-use 5-digit credential, unique per
// (child_id, code_date). The date is part of the identity, so codes never
// carry over between days.
type DailyPickupCode struct {
	ID        string     `db:"id" json:"id"`
	ChildID   string     `db:"child_id" json:"child_id"`
	Code      string     `db:"code" json:"code"`
	CodeDate  time.Time  `db:"code_date" json:"code_date"`
	IsUsed    bool       `db:"is_used" json:"is_used"`
	UsedAt    *time.Time `db:"used_at" json:"used_at,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}
