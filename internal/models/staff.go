package models

import "time"

// Staff is a teacher-role user's employment record. GroupID is the assigned
// classroom; it stays nil until a head teacher assigns one.
type Staff struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	GroupID   *string   `db:"group_id" json:"group_id,omitempty"`
	Position  string    `db:"position" json:"position"`
	HiredAt   time.Time `db:"hired_at" json:"hired_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// StaffDetail extends staff with user metadata for listings.
type StaffDetail struct {
	Staff
	FullName  string  `db:"full_name" json:"full_name"`
	Email     string  `db:"email" json:"email"`
	GroupName *string `db:"group_name" json:"group_name,omitempty"`
}
