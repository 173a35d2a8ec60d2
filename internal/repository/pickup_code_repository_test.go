package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kita-admin-api/internal/models"
)

func newPickupCodeRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestPickupCodeRepositoryInsertWinsRace(t *testing.T) {
	db, mock, cleanup := newPickupCodeRepoMock(t)
	defer cleanup()

	repo := NewPickupCodeRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO daily_pickup_codes")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	created, err := repo.Insert(context.Background(), &models.DailyPickupCode{
		ChildID:  "child-1",
		Code:     "12345",
		CodeDate: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.True(t, created)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPickupCodeRepositoryInsertLosesRace(t *testing.T) {
	db, mock, cleanup := newPickupCodeRepoMock(t)
	defer cleanup()

	repo := NewPickupCodeRepository(db)

	// ON CONFLICT DO NOTHING swallows the duplicate: zero rows affected.
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO daily_pickup_codes")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	created, err := repo.Insert(context.Background(), &models.DailyPickupCode{
		ChildID:  "child-1",
		Code:     "12345",
		CodeDate: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.False(t, created)

	// A raced unique violation is treated the same as losing the conflict.
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO daily_pickup_codes")).
		WillReturnError(&pq.Error{Code: pqUniqueViolation})
	created, err = repo.Insert(context.Background(), &models.DailyPickupCode{
		ChildID:  "child-1",
		Code:     "54321",
		CodeDate: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.False(t, created)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPickupCodeRepositoryFindByChildAndDate(t *testing.T) {
	db, mock, cleanup := newPickupCodeRepoMock(t)
	defer cleanup()

	repo := NewPickupCodeRepository(db)
	date := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "child_id", "code", "code_date", "is_used", "used_at", "created_at"}).
		AddRow("code-1", "child-1", "12345", date, false, nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, child_id, code, code_date")).
		WithArgs("child-1", date).
		WillReturnRows(rows)

	code, err := repo.FindByChildAndDate(context.Background(), "child-1", date)
	require.NoError(t, err)
	require.Equal(t, "12345", code.Code)
	require.False(t, code.IsUsed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPickupCodeRepositoryConsume(t *testing.T) {
	db, mock, cleanup := newPickupCodeRepoMock(t)
	defer cleanup()

	repo := NewPickupCodeRepository(db)
	date := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	usedAt := date.Add(15 * time.Hour)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE daily_pickup_codes SET is_used = TRUE")).
		WithArgs(usedAt, "child-1", date, "12345").
		WillReturnResult(sqlmock.NewResult(0, 1))
	ok, err := repo.Consume(context.Background(), "child-1", "12345", date, usedAt)
	require.NoError(t, err)
	require.True(t, ok)

	// Already used, wrong code, or wrong day: zero rows, same false.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE daily_pickup_codes SET is_used = TRUE")).
		WithArgs(usedAt, "child-1", date, "12345").
		WillReturnResult(sqlmock.NewResult(0, 0))
	ok, err = repo.Consume(context.Background(), "child-1", "12345", date, usedAt)
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}
