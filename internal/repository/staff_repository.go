package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/kita-admin-api/internal/models"
)

// StaffRepository manages persistence for staff employment records.
type StaffRepository struct {
	db *sqlx.DB
}

// NewStaffRepository constructs a new repository.
func NewStaffRepository(db *sqlx.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// FindByUserID returns the staff record owned by the given user.
func (r *StaffRepository) FindByUserID(ctx context.Context, userID string) (*models.Staff, error) {
	var staff models.Staff
	query := `SELECT id, user_id, group_id, position, hired_at, created_at, updated_at
FROM staff WHERE user_id = $1`
	if err := r.db.GetContext(ctx, &staff, query, userID); err != nil {
		return nil, err
	}
	return &staff, nil
}

// FindByID returns the staff record with the given ID.
func (r *StaffRepository) FindByID(ctx context.Context, id string) (*models.Staff, error) {
	var staff models.Staff
	query := `SELECT id, user_id, group_id, position, hired_at, created_at, updated_at
FROM staff WHERE id = $1`
	if err := r.db.GetContext(ctx, &staff, query, id); err != nil {
		return nil, err
	}
	return &staff, nil
}

// List returns staff records joined with user metadata.
func (r *StaffRepository) List(ctx context.Context) ([]models.StaffDetail, error) {
	query := `SELECT s.id, s.user_id, s.group_id, s.position, s.hired_at, s.created_at, s.updated_at,
        u.full_name, u.email, g.name AS group_name
FROM staff s
JOIN users u ON u.id = s.user_id
LEFT JOIN groups g ON g.id = s.group_id
ORDER BY u.full_name ASC`
	var staff []models.StaffDetail
	if err := r.db.SelectContext(ctx, &staff, query); err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	return staff, nil
}

// Create inserts a new staff record.
func (r *StaffRepository) Create(ctx context.Context, staff *models.Staff) error {
	if staff.ID == "" {
		staff.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if staff.CreatedAt.IsZero() {
		staff.CreatedAt = now
	}
	staff.UpdatedAt = now
	query := `INSERT INTO staff (id, user_id, group_id, position, hired_at, created_at, updated_at)
VALUES (:id, :user_id, :group_id, :position, :hired_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, staff); err != nil {
		return fmt.Errorf("create staff: %w", err)
	}
	return nil
}

// AssignGroup moves the staff member to a group; nil clears the assignment.
func (r *StaffRepository) AssignGroup(ctx context.Context, staffID string, groupID *string) error {
	query := "UPDATE staff SET group_id = $1, updated_at = $2 WHERE id = $3"
	res, err := r.db.ExecContext(ctx, query, groupID, time.Now().UTC(), staffID)
	if err != nil {
		return fmt.Errorf("assign group: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("assign group: staff %s not found", staffID)
	}
	return nil
}
