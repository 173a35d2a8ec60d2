package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/kita-admin-api/internal/models"
)

// PickupRecordRepository manages persistence for child release records.
type PickupRecordRepository struct {
	db *sqlx.DB
}

// NewPickupRecordRepository constructs a new repository.
func NewPickupRecordRepository(db *sqlx.DB) *PickupRecordRepository {
	return &PickupRecordRepository{db: db}
}

// FindByID returns the pickup record with the given ID.
func (r *PickupRecordRepository) FindByID(ctx context.Context, id string) (*models.PickupRecord, error) {
	var record models.PickupRecord
	query := `SELECT id, child_id, picked_up_by, pickup_time, recorded_by, notes, created_at
FROM pickup_records WHERE id = $1`
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		return nil, err
	}
	return &record, nil
}

// ListByChild returns the release history for a child, newest first.
func (r *PickupRecordRepository) ListByChild(ctx context.Context, childID string) ([]models.PickupRecord, error) {
	var records []models.PickupRecord
	query := `SELECT id, child_id, picked_up_by, pickup_time, recorded_by, notes, created_at
FROM pickup_records WHERE child_id = $1 ORDER BY pickup_time DESC`
	if err := r.db.SelectContext(ctx, &records, query, childID); err != nil {
		return nil, fmt.Errorf("list pickup records: %w", err)
	}
	return records, nil
}

// Create inserts a new pickup record.
func (r *PickupRecordRepository) Create(ctx context.Context, record *models.PickupRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO pickup_records (id, child_id, picked_up_by, pickup_time, recorded_by, notes, created_at)
VALUES (:id, :child_id, :picked_up_by, :pickup_time, :recorded_by, :notes, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("create pickup record: %w", err)
	}
	return nil
}
