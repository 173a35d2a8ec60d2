package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/kita-admin-api/internal/models"
)

// ChildRepository manages persistence for children, the resource every
// access decision pivots on.
type ChildRepository struct {
	db *sqlx.DB
}

// NewChildRepository constructs a new repository.
func NewChildRepository(db *sqlx.DB) *ChildRepository {
	return &ChildRepository{db: db}
}

// FindByID returns the child with the given ID.
func (r *ChildRepository) FindByID(ctx context.Context, id string) (*models.Child, error) {
	var child models.Child
	query := `SELECT id, parent_id, group_id, first_name, last_name, birth_date, notes, active, created_at, updated_at
FROM children WHERE id = $1`
	if err := r.db.GetContext(ctx, &child, query, id); err != nil {
		return nil, err
	}
	return &child, nil
}

// IDsByParent returns the IDs of all active children owned by the parent.
func (r *ChildRepository) IDsByParent(ctx context.Context, parentID string) ([]string, error) {
	var ids []string
	query := "SELECT id FROM children WHERE parent_id = $1 AND active = TRUE ORDER BY id"
	if err := r.db.SelectContext(ctx, &ids, query, parentID); err != nil {
		return nil, fmt.Errorf("children by parent: %w", err)
	}
	return ids, nil
}

// IDsByGroup returns the IDs of all active children assigned to the group.
func (r *ChildRepository) IDsByGroup(ctx context.Context, groupID string) ([]string, error) {
	var ids []string
	query := "SELECT id FROM children WHERE group_id = $1 AND active = TRUE ORDER BY id"
	if err := r.db.SelectContext(ctx, &ids, query, groupID); err != nil {
		return nil, fmt.Errorf("children by group: %w", err)
	}
	return ids, nil
}

// List returns children matching the filter.
func (r *ChildRepository) List(ctx context.Context, filter models.ChildFilter) ([]models.Child, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.ParentID != "" {
		where = append(where, fmt.Sprintf("parent_id = $%d", len(args)+1))
		args = append(args, filter.ParentID)
	}
	if filter.GroupID != "" {
		where = append(where, fmt.Sprintf("group_id = $%d", len(args)+1))
		args = append(args, filter.GroupID)
	}
	if filter.ChildIDs != nil {
		where = append(where, fmt.Sprintf("id = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(filter.ChildIDs))
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("(first_name ILIKE $%d OR last_name ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.Active != nil {
		where = append(where, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	whereClause := strings.Join(where, " AND ")
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size
	query := fmt.Sprintf(`SELECT id, parent_id, group_id, first_name, last_name, birth_date, notes, active, created_at, updated_at
FROM children WHERE %s ORDER BY last_name ASC, first_name ASC LIMIT %d OFFSET %d`, whereClause, size, offset)
	var children []models.Child
	if err := r.db.SelectContext(ctx, &children, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list children: %w", err)
	}
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM children WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count children: %w", err)
	}
	return children, total, nil
}

// ActiveIDsWithoutPickupCode returns active children lacking a pickup code
// row for the given date. Used by the daily sweep.
func (r *ChildRepository) ActiveIDsWithoutPickupCode(ctx context.Context, date time.Time) ([]string, error) {
	var ids []string
	query := `SELECT c.id FROM children c
WHERE c.active = TRUE
  AND NOT EXISTS (SELECT 1 FROM daily_pickup_codes d WHERE d.child_id = c.id AND d.code_date = $1)
ORDER BY c.id`
	if err := r.db.SelectContext(ctx, &ids, query, date); err != nil {
		return nil, fmt.Errorf("children without pickup code: %w", err)
	}
	return ids, nil
}

// Create inserts a new child.
func (r *ChildRepository) Create(ctx context.Context, child *models.Child) error {
	if child.ID == "" {
		child.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if child.CreatedAt.IsZero() {
		child.CreatedAt = now
	}
	child.UpdatedAt = now
	query := `INSERT INTO children (id, parent_id, group_id, first_name, last_name, birth_date, notes, active, created_at, updated_at)
VALUES (:id, :parent_id, :group_id, :first_name, :last_name, :birth_date, :notes, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, child); err != nil {
		return fmt.Errorf("create child: %w", err)
	}
	return nil
}

// Update modifies an existing child.
func (r *ChildRepository) Update(ctx context.Context, child *models.Child) error {
	child.UpdatedAt = time.Now().UTC()
	query := `UPDATE children SET parent_id = :parent_id, group_id = :group_id, first_name = :first_name,
last_name = :last_name, birth_date = :birth_date, notes = :notes, active = :active, updated_at = :updated_at
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, child); err != nil {
		return fmt.Errorf("update child: %w", err)
	}
	return nil
}

// Deactivate soft-deletes a child.
func (r *ChildRepository) Deactivate(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE children SET active = FALSE, updated_at = $1 WHERE id = $2", time.Now().UTC(), id); err != nil {
		return fmt.Errorf("deactivate child: %w", err)
	}
	return nil
}
