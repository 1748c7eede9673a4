package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahana-institute/payroll-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func collectionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "date", "teacher_id", "class_id", "amount", "student_count",
		"tute_cost_per_student", "postal_fee_per_student", "created_at", "updated_at",
		"class_name", "class_fee_per_student", "institute_fee_percentage",
	})
}

func TestCollectionRepositoryFindByTeacherAndPeriod(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCollectionRepository(db)

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)
	rows := collectionRows().
		AddRow("col-1", from.AddDate(0, 0, 4), "t-1", "cl-1", 500.0, 10, 5.0, 2.0, time.Now(), time.Now(), "Physics", 50.0, 10.0)

	mock.ExpectQuery(`SELECT .+ FROM daily_collections c\s+LEFT JOIN classes cl ON cl\.id = c\.class_id\s+WHERE c\.teacher_id = \$1 AND c\.date >= \$2 AND c\.date <= \$3`).
		WithArgs("t-1", from, to).
		WillReturnRows(rows)

	result, err := repo.FindByTeacherAndPeriod(context.Background(), "t-1", from, to)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "col-1", result[0].ID)
	require.NotNil(t, result[0].ClassName)
	assert.Equal(t, "Physics", *result[0].ClassName)
	assert.True(t, result[0].HasClass())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectionRepositoryFindByTeacherAndPeriodDanglingClass(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCollectionRepository(db)

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)
	rows := collectionRows().
		AddRow("col-2", from, "t-1", "gone", 100.0, 2, 0.0, 0.0, time.Now(), time.Now(), nil, nil, nil)

	mock.ExpectQuery(`SELECT .+ FROM daily_collections c`).
		WithArgs("t-1", from, to).
		WillReturnRows(rows)

	result, err := repo.FindByTeacherAndPeriod(context.Background(), "t-1", from, to)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.False(t, result[0].HasClass())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectionRepositoryListFiltersByDay(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCollectionRepository(db)

	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT .+ FROM daily_collections c LEFT JOIN classes cl ON cl\.id = c\.class_id WHERE 1=1 AND c\.teacher_id = \$1 AND c\.date >= \$2 AND c\.date < \$3`).
		WithArgs("t-1", day, day.Add(24*time.Hour)).
		WillReturnRows(collectionRows())

	result, err := repo.List(context.Background(), models.CollectionFilter{TeacherID: "t-1", Day: day})
	require.NoError(t, err)
	assert.Empty(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectionRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCollectionRepository(db)

	mock.ExpectExec("INSERT INTO daily_collections").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	collection := &models.DailyCollection{
		Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), TeacherID: "t-1", ClassID: "cl-1",
		Amount: 500, StudentCount: 10, TuteCostPerStudent: 5, PostalFeePerStudent: 2,
	}
	require.NoError(t, repo.Create(context.Background(), collection))
	assert.NotEmpty(t, collection.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectionRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCollectionRepository(db)

	mock.ExpectExec("DELETE FROM daily_collections WHERE id = \\$1").
		WithArgs("col-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "col-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
