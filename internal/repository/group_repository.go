package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/kita-admin-api/internal/models"
)

// GroupRepository manages persistence for classroom groups.
type GroupRepository struct {
	db *sqlx.DB
}

// NewGroupRepository constructs a new repository.
func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// FindByID returns the group with the given ID.
func (r *GroupRepository) FindByID(ctx context.Context, id string) (*models.Group, error) {
	var group models.Group
	query := `SELECT id, name, capacity, age_min, age_max, room, created_at, updated_at
FROM groups WHERE id = $1`
	if err := r.db.GetContext(ctx, &group, query, id); err != nil {
		return nil, err
	}
	return &group, nil
}

// List returns all groups with their assigned teacher and headcount.
func (r *GroupRepository) List(ctx context.Context) ([]models.GroupDetail, error) {
	query := `SELECT g.id, g.name, g.capacity, g.age_min, g.age_max, g.room, g.created_at, g.updated_at,
        s.id AS teacher_id, u.full_name AS teacher_name,
        (SELECT COUNT(*) FROM children c WHERE c.group_id = g.id AND c.active = TRUE) AS child_count
FROM groups g
LEFT JOIN staff s ON s.group_id = g.id
LEFT JOIN users u ON u.id = s.user_id
ORDER BY g.name ASC`
	var groups []models.GroupDetail
	if err := r.db.SelectContext(ctx, &groups, query); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

// Create inserts a new group.
func (r *GroupRepository) Create(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if group.CreatedAt.IsZero() {
		group.CreatedAt = now
	}
	group.UpdatedAt = now
	query := `INSERT INTO groups (id, name, capacity, age_min, age_max, room, created_at, updated_at)
VALUES (:id, :name, :capacity, :age_min, :age_max, :room, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, group); err != nil {
		return fmt.Errorf("create group: %w", err)
	}
	return nil
}

// Update modifies an existing group.
func (r *GroupRepository) Update(ctx context.Context, group *models.Group) error {
	group.UpdatedAt = time.Now().UTC()
	query := `UPDATE groups SET name = :name, capacity = :capacity, age_min = :age_min, age_max = :age_max,
room = :room, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, group); err != nil {
		return fmt.Errorf("update group: %w", err)
	}
	return nil
}

// Delete removes a group. Children keep their rows; their group_id is
// cleared by the foreign key's ON DELETE SET NULL.
func (r *GroupRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM groups WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	return nil
}
