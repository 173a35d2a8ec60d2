package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kita-admin-api/internal/models"
)

func newChildRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestChildRepositoryCreateAndFind(t *testing.T) {
	db, mock, cleanup := newChildRepoMock(t)
	defer cleanup()

	repo := NewChildRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO children")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	child := &models.Child{
		ParentID:  "parent-1",
		FirstName: "Mia",
		LastName:  "Keller",
		BirthDate: time.Date(2022, 5, 14, 0, 0, 0, 0, time.UTC),
		Active:    true,
	}
	require.NoError(t, repo.Create(context.Background(), child))
	require.NotEmpty(t, child.ID)

	rows := sqlmock.NewRows([]string{"id", "parent_id", "group_id", "first_name", "last_name", "birth_date", "notes", "active", "created_at", "updated_at"}).
		AddRow(child.ID, "parent-1", nil, "Mia", "Keller", child.BirthDate, nil, true, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, parent_id, group_id")).
		WithArgs(child.ID).
		WillReturnRows(rows)

	found, err := repo.FindByID(context.Background(), child.ID)
	require.NoError(t, err)
	require.Equal(t, "Mia", found.FirstName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestChildRepositoryListScopesByIDs(t *testing.T) {
	db, mock, cleanup := newChildRepoMock(t)
	defer cleanup()

	repo := NewChildRepository(db)
	rows := sqlmock.NewRows([]string{"id", "parent_id", "group_id", "first_name", "last_name", "birth_date", "notes", "active", "created_at", "updated_at"}).
		AddRow("child-1", "parent-1", nil, "Mia", "Keller", time.Now(), nil, true, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, parent_id, group_id")).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM children")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	children, total, err := repo.List(context.Background(), models.ChildFilter{
		ChildIDs: []string{"child-1"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, children, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestChildRepositoryActiveIDsWithoutPickupCode(t *testing.T) {
	db, mock, cleanup := newChildRepoMock(t)
	defer cleanup()

	repo := NewChildRepository(db)
	date := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT c.id FROM children c")).
		WithArgs(date).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("child-1").AddRow("child-2"))

	ids, err := repo.ActiveIDsWithoutPickupCode(context.Background(), date)
	require.NoError(t, err)
	require.Equal(t, []string{"child-1", "child-2"}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestChildRepositoryDeactivate(t *testing.T) {
	db, mock, cleanup := newChildRepoMock(t)
	defer cleanup()

	repo := NewChildRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE children SET active = FALSE")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Deactivate(context.Background(), "child-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
