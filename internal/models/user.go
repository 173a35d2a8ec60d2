package models

import "time"

// UserRole represents the available roles for the portal system.
// Roles are fixed at registration; there is no role-change flow.
type UserRole string

const (
	RoleAdmin       UserRole = "ADMIN"
	RoleHeadTeacher UserRole = "HEADTEACHER"
	RoleTeacher     UserRole = "TEACHER"
	RoleParent      UserRole = "PARENT"
)

// Valid reports whether the role is a supported value.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleHeadTeacher, RoleTeacher, RoleParent:
		return true
	default:
		return false
	}
}

// Staffer reports whether the role belongs to kindergarten staff.
func (r UserRole) Staffer() bool {
	switch r {
	case RoleAdmin, RoleHeadTeacher, RoleTeacher:
		return true
	default:
		return false
	}
}

// User represents an application user stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Role         UserRole   `db:"role" json:"role"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role     *UserRole
	Active   *bool
	Search   string
	Page     int
	PageSize int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
