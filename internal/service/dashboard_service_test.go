package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahana-institute/payroll-api/internal/models"
	"github.com/sahana-institute/payroll-api/internal/repository"
)

func TestDashboardAggregatesAcrossTeachers(t *testing.T) {
	store := repository.NewMemStore()
	physics := store.AddClass(models.Class{Name: "Physics", FeePerStudent: 50, InstituteFeePercentage: 10})
	maths := store.AddClass(models.Class{Name: "Maths", FeePerStudent: 40, InstituteFeePercentage: 20})
	first := store.AddTeacher(models.Teacher{Name: "A", Active: true})
	second := store.AddTeacher(models.Teacher{Name: "B", Active: true})

	store.AddCollection(models.DailyCollection{
		TeacherID: first, ClassID: physics, Date: day(t, "2024-03-05"), Amount: 500, StudentCount: 10,
	})
	store.AddCollection(models.DailyCollection{
		TeacherID: second, ClassID: maths, Date: day(t, "2024-03-06"), Amount: 900, StudentCount: 15,
	})
	// Both teachers touch physics; the class ranking merges across them.
	store.AddCollection(models.DailyCollection{
		TeacherID: second, ClassID: physics, Date: day(t, "2024-03-07"), Amount: 200, StudentCount: 4,
	})

	payroll := newTestPayrollService(store, nil)
	svc := NewDashboardService(payroll, nil)

	summary, err := svc.AdminDashboard(context.Background(), "2024-03-15")
	require.NoError(t, err)

	assert.Equal(t, "2024-03", summary.Month)
	assert.Equal(t, 1600.0, summary.TotalCollection)
	assert.Equal(t, 29, summary.TotalStudents)
	assert.Equal(t, 2, summary.TeacherCount)

	require.Len(t, summary.TopClasses, 2)
	assert.Equal(t, maths, summary.TopClasses[0].ClassID)
	assert.Equal(t, 900.0, summary.TopClasses[0].TotalCollection)
	assert.Equal(t, physics, summary.TopClasses[1].ClassID)
	assert.Equal(t, 700.0, summary.TopClasses[1].TotalCollection)
}

func TestDashboardEmptyMonth(t *testing.T) {
	store := repository.NewMemStore()
	store.AddTeacher(models.Teacher{Name: "Idle", Active: true})

	svc := NewDashboardService(newTestPayrollService(store, nil), nil)
	summary, err := svc.AdminDashboard(context.Background(), "2024-11-01")
	require.NoError(t, err)

	assert.Equal(t, 0.0, summary.TotalCollection)
	assert.Equal(t, 1, summary.TeacherCount)
	assert.Empty(t, summary.TopClasses)
	assert.NotNil(t, summary.TopClasses)
}
