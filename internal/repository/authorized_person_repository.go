package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/kita-admin-api/internal/models"
)

// AuthorizedPersonRepository manages persistence for pickup authorizations.
type AuthorizedPersonRepository struct {
	db *sqlx.DB
}

// NewAuthorizedPersonRepository constructs a new repository.
func NewAuthorizedPersonRepository(db *sqlx.DB) *AuthorizedPersonRepository {
	return &AuthorizedPersonRepository{db: db}
}

// FindByID returns the authorized person with the given ID.
func (r *AuthorizedPersonRepository) FindByID(ctx context.Context, id string) (*models.AuthorizedPerson, error) {
	var person models.AuthorizedPerson
	query := `SELECT id, child_id, full_name, relationship, phone, active, created_at, updated_at
FROM authorized_persons WHERE id = $1`
	if err := r.db.GetContext(ctx, &person, query, id); err != nil {
		return nil, err
	}
	return &person, nil
}

// ListByChild returns all authorized persons for a child.
func (r *AuthorizedPersonRepository) ListByChild(ctx context.Context, childID string) ([]models.AuthorizedPerson, error) {
	var persons []models.AuthorizedPerson
	query := `SELECT id, child_id, full_name, relationship, phone, active, created_at, updated_at
FROM authorized_persons WHERE child_id = $1 ORDER BY full_name ASC`
	if err := r.db.SelectContext(ctx, &persons, query, childID); err != nil {
		return nil, fmt.Errorf("list authorized persons: %w", err)
	}
	return persons, nil
}

// Create inserts a new authorized person.
func (r *AuthorizedPersonRepository) Create(ctx context.Context, person *models.AuthorizedPerson) error {
	if person.ID == "" {
		person.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if person.CreatedAt.IsZero() {
		person.CreatedAt = now
	}
	person.UpdatedAt = now
	query := `INSERT INTO authorized_persons (id, child_id, full_name, relationship, phone, active, created_at, updated_at)
VALUES (:id, :child_id, :full_name, :relationship, :phone, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, person); err != nil {
		return fmt.Errorf("create authorized person: %w", err)
	}
	return nil
}

// Update modifies an existing authorized person.
func (r *AuthorizedPersonRepository) Update(ctx context.Context, person *models.AuthorizedPerson) error {
	person.UpdatedAt = time.Now().UTC()
	query := `UPDATE authorized_persons SET full_name = :full_name, relationship = :relationship,
phone = :phone, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, person); err != nil {
		return fmt.Errorf("update authorized person: %w", err)
	}
	return nil
}

// Delete removes an authorized person.
func (r *AuthorizedPersonRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM authorized_persons WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete authorized person: %w", err)
	}
	return nil
}
