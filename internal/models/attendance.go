package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent  AttendanceStatus = "PRESENT"
	AttendanceStatusAbsent   AttendanceStatus = "ABSENT"
	AttendanceStatusSick     AttendanceStatus = "SICK"
	AttendanceStatusVacation AttendanceStatus = "VACATION"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusSick, AttendanceStatusVacation:
		return true
	default:
		return false
	}
}

// Attendance represents a single daily attendance row for a child.
type Attendance struct {
	ID        string           `db:"id" json:"id"`
	ChildID   string           `db:"child_id" json:"child_id"`
	Date      time.Time        `db:"date" json:"date"`
	Status    AttendanceStatus `db:"status" json:"status"`
	CheckIn   *time.Time       `db:"check_in" json:"check_in,omitempty"`
	CheckOut  *time.Time       `db:"check_out" json:"check_out,omitempty"`
	Notes     *string          `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// AttendanceFilter defines query filters.
type AttendanceFilter struct {
	ChildID  string
	ChildIDs []string
	GroupID  string
	Status   *AttendanceStatus
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	PageSize int
}
