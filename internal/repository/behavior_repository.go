package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/kita-admin-api/internal/models"
)

// BehaviorRepository manages persistence for behavioural observations.
type BehaviorRepository struct {
	db *sqlx.DB
}

// NewBehaviorRepository constructs a new repository.
func NewBehaviorRepository(db *sqlx.DB) *BehaviorRepository {
	return &BehaviorRepository{db: db}
}

// FindByID returns the observation with the given ID.
func (r *BehaviorRepository) FindByID(ctx context.Context, id string) (*models.BehavioralInfo, error) {
	var note models.BehavioralInfo
	query := `SELECT id, child_id, date, note_type, description, created_by, created_at, updated_at
FROM behavioral_info WHERE id = $1`
	if err := r.db.GetContext(ctx, &note, query, id); err != nil {
		return nil, err
	}
	return &note, nil
}

// ListByChild returns all observations for a child, newest first.
func (r *BehaviorRepository) ListByChild(ctx context.Context, childID string) ([]models.BehavioralInfo, error) {
	var notes []models.BehavioralInfo
	query := `SELECT id, child_id, date, note_type, description, created_by, created_at, updated_at
FROM behavioral_info WHERE child_id = $1 ORDER BY date DESC, created_at DESC`
	if err := r.db.SelectContext(ctx, &notes, query, childID); err != nil {
		return nil, fmt.Errorf("list behavioral info: %w", err)
	}
	return notes, nil
}

// Create inserts a new observation.
func (r *BehaviorRepository) Create(ctx context.Context, note *models.BehavioralInfo) error {
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if note.CreatedAt.IsZero() {
		note.CreatedAt = now
	}
	note.UpdatedAt = now
	query := `INSERT INTO behavioral_info (id, child_id, date, note_type, description, created_by, created_at, updated_at)
VALUES (:id, :child_id, :date, :note_type, :description, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, note); err != nil {
		return fmt.Errorf("create behavioral info: %w", err)
	}
	return nil
}

// Update modifies an existing observation.
func (r *BehaviorRepository) Update(ctx context.Context, note *models.BehavioralInfo) error {
	note.UpdatedAt = time.Now().UTC()
	query := `UPDATE behavioral_info SET date = :date, note_type = :note_type, description = :description,
updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, note); err != nil {
		return fmt.Errorf("update behavioral info: %w", err)
	}
	return nil
}

// Delete removes an observation.
func (r *BehaviorRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM behavioral_info WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete behavioral info: %w", err)
	}
	return nil
}
