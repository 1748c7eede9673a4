package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahana-institute/payroll-api/internal/models"
	"github.com/sahana-institute/payroll-api/internal/repository"
)

func newExportFixture(t *testing.T) *ExportService {
	t.Helper()
	store := repository.NewMemStore()
	classID := store.AddClass(models.Class{Name: "Physics", FeePerStudent: 50, InstituteFeePercentage: 10})
	teacherID := store.AddTeacher(models.Teacher{Name: "K. Perera", Active: true})
	store.AddCollection(models.DailyCollection{
		TeacherID: teacherID, ClassID: classID, Date: day(t, "2024-03-05"),
		Amount: 500, StudentCount: 10, TuteCostPerStudent: 5, PostalFeePerStudent: 2,
	})
	return NewExportService(newTestPayrollService(store, nil), nil)
}

func TestExportServiceCSV(t *testing.T) {
	svc := newExportFixture(t)

	file, err := svc.MonthlyExport(context.Background(), "2024-03-15", "csv")
	require.NoError(t, err)

	assert.Equal(t, "salary-2024-03.csv", file.FileName)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.Contains(t, string(file.Body), "K. Perera")
	assert.Contains(t, string(file.Body), "380.00")
}

func TestExportServiceDefaultsToCSV(t *testing.T) {
	svc := newExportFixture(t)

	file, err := svc.MonthlyExport(context.Background(), "2024-03-15", "")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
}

func TestExportServicePDF(t *testing.T) {
	svc := newExportFixture(t)

	file, err := svc.MonthlyExport(context.Background(), "2024-03-15", "pdf")
	require.NoError(t, err)

	assert.Equal(t, "payslips-2024-03.pdf", file.FileName)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Body, []byte("%PDF")))
}

func TestExportServiceUnknownFormat(t *testing.T) {
	svc := newExportFixture(t)

	_, err := svc.MonthlyExport(context.Background(), "2024-03-15", "xlsx")
	require.Error(t, err)
}
