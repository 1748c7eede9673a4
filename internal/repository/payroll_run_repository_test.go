package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahana-institute/payroll-api/internal/models"
)

func TestPayrollRunRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPayrollRunRepository(db)

	mock.ExpectExec("INSERT INTO payroll_runs").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	run := &models.PayrollRun{
		Month:       "2024-03",
		PeriodStart: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC),
		Report:      []byte(`[]`),
		FinalizedBy: "admin-1",
	}
	require.NoError(t, repo.Create(context.Background(), run))
	assert.NotEmpty(t, run.ID)
	assert.False(t, run.FinalizedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayrollRunRepositoryFindByMonth(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPayrollRunRepository(db)

	rows := sqlmock.NewRows([]string{"id", "month", "period_start", "period_end", "report", "finalized_by", "finalized_at"}).
		AddRow("run-1", "2024-03", time.Now(), time.Now(), []byte(`[]`), "admin-1", time.Now())
	mock.ExpectQuery(`SELECT .+ FROM payroll_runs WHERE month = \$1`).
		WithArgs("2024-03").
		WillReturnRows(rows)

	run, err := repo.FindByMonth(context.Background(), "2024-03")
	require.NoError(t, err)
	assert.Equal(t, "run-1", run.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayrollRunRepositoryFindByMonthMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPayrollRunRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM payroll_runs WHERE month = \$1`).
		WithArgs("2024-04").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByMonth(context.Background(), "2024-04")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayrollRunRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPayrollRunRepository(db)

	rows := sqlmock.NewRows([]string{"id", "month", "period_start", "period_end", "report", "finalized_by", "finalized_at"}).
		AddRow("run-2", "2024-04", time.Now(), time.Now(), []byte(`[]`), "admin-1", time.Now()).
		AddRow("run-1", "2024-03", time.Now(), time.Now(), []byte(`[]`), "admin-1", time.Now())
	mock.ExpectQuery(`SELECT .+ FROM payroll_runs ORDER BY month DESC`).
		WillReturnRows(rows)

	runs, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "2024-04", runs[0].Month)
	assert.NoError(t, mock.ExpectationsWereMet())
}
