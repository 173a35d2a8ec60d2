package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/kita-admin-api/internal/models"
)

const pqUniqueViolation = "23505"

// PickupCodeRepository manages persistence for daily pickup codes. The
// uniqueness constraint on (child_id, code_date) is the concurrency
// mechanism: concurrent creators race on the insert and the loser re-reads.
type PickupCodeRepository struct {
	db *sqlx.DB
}

// NewPickupCodeRepository constructs a new repository.
func NewPickupCodeRepository(db *sqlx.DB) *PickupCodeRepository {
	return &PickupCodeRepository{db: db}
}

// FindByChildAndDate returns the code row for (child, day), if any.
func (r *PickupCodeRepository) FindByChildAndDate(ctx context.Context, childID string, date time.Time) (*models.DailyPickupCode, error) {
	var code models.DailyPickupCode
	query := `SELECT id, child_id, code, code_date, is_used, used_at, created_at
FROM daily_pickup_codes WHERE child_id = $1 AND code_date = $2`
	if err := r.db.GetContext(ctx, &code, query, childID, date); err != nil {
		return nil, err
	}
	return &code, nil
}

// Insert stores a fresh code row. It returns false without error when a row
// for (child, day) already exists, either via ON CONFLICT DO NOTHING or a
// raced unique violation.
func (r *PickupCodeRepository) Insert(ctx context.Context, code *models.DailyPickupCode) (bool, error) {
	if code.ID == "" {
		code.ID = uuid.NewString()
	}
	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO daily_pickup_codes (id, child_id, code, code_date, is_used, used_at, created_at)
VALUES (:id, :child_id, :code, :code_date, :is_used, :used_at, :created_at)
ON CONFLICT (child_id, code_date) DO NOTHING`
	res, err := r.db.NamedExecContext(ctx, query, code)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == pqUniqueViolation {
			return false, nil
		}
		return false, fmt.Errorf("insert pickup code: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert pickup code: %w", err)
	}
	return affected == 1, nil
}

// Consume atomically flips an unused, matching code for the given day to
// used. It reports true only when exactly one row transitioned; every kind
// of mismatch (wrong code, wrong day, already used) lands in the same false.
func (r *PickupCodeRepository) Consume(ctx context.Context, childID, code string, date, usedAt time.Time) (bool, error) {
	query := `UPDATE daily_pickup_codes SET is_used = TRUE, used_at = $1
WHERE child_id = $2 AND code_date = $3 AND code = $4 AND is_used = FALSE`
	res, err := r.db.ExecContext(ctx, query, usedAt, childID, date, code)
	if err != nil {
		return false, fmt.Errorf("consume pickup code: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("consume pickup code: %w", err)
	}
	return affected == 1, nil
}
