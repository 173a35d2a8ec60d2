package models

import "time"

// Group is a classroom children and one teacher are scoped to.
type Group struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Capacity  int       `db:"capacity" json:"capacity"`
	AgeMin    int       `db:"age_min" json:"age_min"`
	AgeMax    int       `db:"age_max" json:"age_max"`
	Room      *string   `db:"room" json:"room,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// GroupDetail extends the group with its assigned teacher and headcount.
type GroupDetail struct {
	Group
	TeacherID   *string `db:"teacher_id" json:"teacher_id,omitempty"`
	TeacherName *string `db:"teacher_name" json:"teacher_name,omitempty"`
	ChildCount  int     `db:"child_count" json:"child_count"`
}
