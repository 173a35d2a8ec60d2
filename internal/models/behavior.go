package models

import "time"

// BehaviorNoteType classifies a behavioural observation.
type BehaviorNoteType string

const (
	BehaviorNotePositive BehaviorNoteType = "POSITIVE"
	BehaviorNoteNegative BehaviorNoteType = "NEGATIVE"
	BehaviorNoteNeutral  BehaviorNoteType = "NEUTRAL"
)

// BehavioralInfo is a dated observation about a child written by staff.
type BehavioralInfo struct {
	ID          string           `db:"id" json:"id"`
	ChildID     string           `db:"child_id" json:"child_id"`
	Date        time.Time        `db:"date" json:"date"`
	NoteType    BehaviorNoteType `db:"note_type" json:"note_type"`
	Description string           `db:"description" json:"description"`
	CreatedBy   string           `db:"created_by" json:"created_by"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updated_at"`
}
