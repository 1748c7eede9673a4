package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahana-institute/payroll-api/internal/models"
)

func teacherRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "phone", "address", "active", "created_at", "updated_at"})
}

func TestTeacherRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM teachers WHERE 1=1 ORDER BY created_at DESC LIMIT 20 OFFSET 0`).
		WillReturnRows(teacherRows().AddRow("t-1", "K. Perera", nil, nil, true, time.Now(), time.Now()))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM teachers WHERE 1=1`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	teachers, total, err := repo.List(context.Background(), models.TeacherFilter{})
	require.NoError(t, err)
	assert.Len(t, teachers, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryListWithFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	active := true
	mock.ExpectQuery(`SELECT .+ FROM teachers WHERE 1=1 AND active = \$1 AND \(LOWER\(name\) LIKE \$2 OR LOWER\(COALESCE\(phone, ''\)\) LIKE \$2\) ORDER BY name ASC`).
		WithArgs(true, "%perera%").
		WillReturnRows(teacherRows())
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM teachers WHERE 1=1 AND active = \$1`).
		WithArgs(true, "%perera%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, total, err := repo.List(context.Background(), models.TeacherFilter{
		Search: "Perera", Active: &active, SortBy: "name", SortOrder: "asc",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryListActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM teachers WHERE active = TRUE ORDER BY created_at ASC`).
		WillReturnRows(teacherRows().
			AddRow("t-1", "First", nil, nil, true, time.Now(), time.Now()).
			AddRow("t-2", "Second", nil, nil, true, time.Now(), time.Now()))

	teachers, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, teachers, 2)
	assert.Equal(t, "t-1", teachers[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryDeactivate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectExec(`UPDATE teachers SET active = FALSE, updated_at = \$2 WHERE id = \$1`).
		WithArgs("t-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Deactivate(context.Background(), "t-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryHasDependents(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("t-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.HasDependents(context.Background(), "t-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
