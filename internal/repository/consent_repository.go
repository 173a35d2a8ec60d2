package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/kita-admin-api/internal/models"
)

// ConsentRepository manages persistence for parental consents.
type ConsentRepository struct {
	db *sqlx.DB
}

// NewConsentRepository constructs a new repository.
func NewConsentRepository(db *sqlx.DB) *ConsentRepository {
	return &ConsentRepository{db: db}
}

// FindByID returns the consent with the given ID.
func (r *ConsentRepository) FindByID(ctx context.Context, id string) (*models.Consent, error) {
	var consent models.Consent
	query := `SELECT id, child_id, consent_type, granted, granted_by, notes, created_at, updated_at
FROM consents WHERE id = $1`
	if err := r.db.GetContext(ctx, &consent, query, id); err != nil {
		return nil, err
	}
	return &consent, nil
}

// ListByChild returns all consents recorded for a child.
func (r *ConsentRepository) ListByChild(ctx context.Context, childID string) ([]models.Consent, error) {
	var consents []models.Consent
	query := `SELECT id, child_id, consent_type, granted, granted_by, notes, created_at, updated_at
FROM consents WHERE child_id = $1 ORDER BY consent_type ASC`
	if err := r.db.SelectContext(ctx, &consents, query, childID); err != nil {
		return nil, fmt.Errorf("list consents: %w", err)
	}
	return consents, nil
}

// Create inserts a new consent.
func (r *ConsentRepository) Create(ctx context.Context, consent *models.Consent) error {
	if consent.ID == "" {
		consent.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if consent.CreatedAt.IsZero() {
		consent.CreatedAt = now
	}
	consent.UpdatedAt = now
	query := `INSERT INTO consents (id, child_id, consent_type, granted, granted_by, notes, created_at, updated_at)
VALUES (:id, :child_id, :consent_type, :granted, :granted_by, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, consent); err != nil {
		return fmt.Errorf("create consent: %w", err)
	}
	return nil
}

// Update modifies an existing consent.
func (r *ConsentRepository) Update(ctx context.Context, consent *models.Consent) error {
	consent.UpdatedAt = time.Now().UTC()
	query := `UPDATE consents SET consent_type = :consent_type, granted = :granted, granted_by = :granted_by,
notes = :notes, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, consent); err != nil {
		return fmt.Errorf("update consent: %w", err)
	}
	return nil
}

// Delete removes a consent.
func (r *ConsentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM consents WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete consent: %w", err)
	}
	return nil
}
