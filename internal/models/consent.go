package models

import "time"

// ConsentType enumerates the consent categories parents can grant.
type ConsentType string

const (
	ConsentPhoto      ConsentType = "PHOTO"
	ConsentExcursion  ConsentType = "EXCURSION"
	ConsentMedical    ConsentType = "MEDICAL"
	ConsentDataShare  ConsentType = "DATA_SHARE"
	ConsentSunProtect ConsentType = "SUN_PROTECTION"
)

// Valid reports whether the consent type is supported.
func (t ConsentType) Valid() bool {
	switch t {
	case ConsentPhoto, ConsentExcursion, ConsentMedical, ConsentDataShare, ConsentSunProtect:
		return true
	default:
		return false
	}
}

// Consent records a parent's yes/no decision for a child.
type Consent struct {
	ID        string      `db:"id" json:"id"`
	ChildID   string      `db:"child_id" json:"child_id"`
	Type      ConsentType `db:"consent_type" json:"consent_type"`
	Granted   bool        `db:"granted" json:"granted"`
	GrantedBy *string     `db:"granted_by" json:"granted_by,omitempty"`
	Notes     *string     `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`
}
