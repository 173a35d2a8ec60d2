package models

import "time"

// Child is the central resource most access decisions pivot on. Every child
// belongs to exactly one parent and optionally one group.
type Child struct {
	ID        string    `db:"id" json:"id"`
	ParentID  string    `db:"parent_id" json:"parent_id"`
	GroupID   *string   `db:"group_id" json:"group_id,omitempty"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	BirthDate time.Time `db:"birth_date" json:"birth_date"`
	Notes     *string   `db:"notes" json:"notes,omitempty"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ChildFilter defines query filters for listing children.
type ChildFilter struct {
	ParentID string
	GroupID  string
	// ChildIDs restricts the result to an already-computed access scope.
	ChildIDs []string
	Search   string
	Active   *bool
	Page     int
	PageSize int
}
