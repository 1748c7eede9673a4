package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahana-institute/payroll-api/internal/dto"
	"github.com/sahana-institute/payroll-api/internal/models"
	"github.com/sahana-institute/payroll-api/internal/repository"
	appErrors "github.com/sahana-institute/payroll-api/pkg/errors"
)

type fakeRunStore struct {
	runs []models.PayrollRun
}

func (f *fakeRunStore) Create(_ context.Context, run *models.PayrollRun) error {
	if run.ID == "" {
		run.ID = "run-" + run.Month
	}
	f.runs = append(f.runs, *run)
	return nil
}

func (f *fakeRunStore) FindByMonth(_ context.Context, month string) (*models.PayrollRun, error) {
	for i := range f.runs {
		if f.runs[i].Month == month {
			return &f.runs[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeRunStore) FindByID(_ context.Context, id string) (*models.PayrollRun, error) {
	for i := range f.runs {
		if f.runs[i].ID == id {
			return &f.runs[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeRunStore) List(_ context.Context) ([]models.PayrollRun, error) {
	return f.runs, nil
}

func newTestPayrollService(store *repository.MemStore, runs payrollRunStore) *PayrollService {
	return NewPayrollService(PayrollServiceParams{
		Teachers:    store,
		Collections: store.Collections(),
		Deductions:  store.Deductions(),
		Runs:        runs,
		Config:      PayrollServiceConfig{WorkerConcurrency: 4},
	})
}

func day(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return parsed.UTC()
}

func TestResolvePeriod(t *testing.T) {
	period, err := ResolvePeriod("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), period.Start)
	assert.Equal(t, time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC), period.End)

	period, err = ResolvePeriod("2024-02")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), period.Start)
	assert.Equal(t, time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC), period.End)

	_, err = ResolvePeriod("")
	require.Error(t, err)
	_, err = ResolvePeriod("15-03-2024")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestTeacherReportComputesMonthlyTotals(t *testing.T) {
	store := repository.NewMemStore()
	classID := store.AddClass(models.Class{Name: "2024 Physics", FeePerStudent: 50, InstituteFeePercentage: 10})
	teacherID := store.AddTeacher(models.Teacher{Name: "Nimal Perera", Active: true})

	store.AddCollection(models.DailyCollection{
		TeacherID: teacherID, ClassID: classID, Date: day(t, "2024-03-05"),
		Amount: 500, StudentCount: 10, TuteCostPerStudent: 5, PostalFeePerStudent: 2,
	})
	store.AddCollection(models.DailyCollection{
		TeacherID: teacherID, ClassID: classID, Date: day(t, "2024-03-12"),
		Amount: 300, StudentCount: 6, TuteCostPerStudent: 5, PostalFeePerStudent: 2,
	})
	store.AddDeduction(models.Deduction{
		TeacherID: teacherID, Type: "advance", Amount: 50, Date: day(t, "2024-03-20"),
	})

	svc := newTestPayrollService(store, nil)
	report, err := svc.TeacherReport(context.Background(), teacherID, "2024-03-15")
	require.NoError(t, err)

	assert.Equal(t, 800.0, report.Stats.TotalCollection)
	assert.Equal(t, 16, report.Stats.TotalStudents)
	assert.Equal(t, 800.0, report.Stats.GrossPay)
	assert.Equal(t, 80.0, report.Stats.TotalTuteCost)
	assert.Equal(t, 32.0, report.Stats.TotalPostalFee)
	assert.Equal(t, 80.0, report.Stats.TotalInstituteFee)
	assert.Equal(t, 192.0, report.Stats.AutomaticDeductions)
	assert.Equal(t, 50.0, report.Stats.ManualDeductions)
	assert.Equal(t, 242.0, report.Stats.TotalDeductions)
	assert.Equal(t, 558.0, report.Stats.NetPay)
	assert.Equal(t, 192.0, report.Stats.InstituteRetained)

	require.Len(t, report.Details.ByClass, 1)
	line := report.Details.ByClass[0]
	assert.Equal(t, classID, line.ClassID)
	assert.Equal(t, 800.0, line.TotalCollection)
	assert.Equal(t, 800.0, line.GrossPay)
	assert.Equal(t, 16, line.TotalStudents)

	require.Len(t, report.Details.Deductions, 1)
	assert.Equal(t, "advance", report.Details.Deductions[0].Type)
}

func TestTeacherReportSplittingRowsPreservesTotals(t *testing.T) {
	single := repository.NewMemStore()
	classA := single.AddClass(models.Class{Name: "Maths", FeePerStudent: 40, InstituteFeePercentage: 20})
	teacherA := single.AddTeacher(models.Teacher{Name: "Kamala", Active: true})
	single.AddCollection(models.DailyCollection{
		TeacherID: teacherA, ClassID: classA, Date: day(t, "2024-05-10"),
		Amount: 1000, StudentCount: 10, TuteCostPerStudent: 5, PostalFeePerStudent: 2,
	})

	split := repository.NewMemStore()
	classB := split.AddClass(models.Class{ID: classA, Name: "Maths", FeePerStudent: 40, InstituteFeePercentage: 20})
	teacherB := split.AddTeacher(models.Teacher{ID: teacherA, Name: "Kamala", Active: true})
	for _, d := range []string{"2024-05-10", "2024-05-17"} {
		split.AddCollection(models.DailyCollection{
			TeacherID: teacherB, ClassID: classB, Date: day(t, d),
			Amount: 500, StudentCount: 5, TuteCostPerStudent: 5, PostalFeePerStudent: 2,
		})
	}

	ctx := context.Background()
	one, err := newTestPayrollService(single, nil).TeacherReport(ctx, teacherA, "2024-05-01")
	require.NoError(t, err)
	two, err := newTestPayrollService(split, nil).TeacherReport(ctx, teacherB, "2024-05-01")
	require.NoError(t, err)

	assert.Equal(t, one.Stats, two.Stats)
	// 1000 collection, 20% institute fee, 10 students at 5/2 per head.
	assert.Equal(t, 200.0, one.Stats.TotalInstituteFee)
	assert.Equal(t, 50.0, one.Stats.TotalTuteCost)
	assert.Equal(t, 20.0, one.Stats.TotalPostalFee)
	assert.Equal(t, 270.0, one.Stats.AutomaticDeductions)
	assert.Equal(t, 730.0, one.Stats.NetPay)
}

func TestTeacherReportIsIdempotent(t *testing.T) {
	store := repository.NewMemStore()
	store.SeedDemo(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))
	teachers, err := store.ListActive(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, teachers)

	svc := newTestPayrollService(store, nil)
	first, err := svc.TeacherReport(context.Background(), teachers[0].ID, "2024-06-01")
	require.NoError(t, err)
	second, err := svc.TeacherReport(context.Background(), teachers[0].ID, "2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestTeacherReportPeriodBoundaries(t *testing.T) {
	store := repository.NewMemStore()
	classID := store.AddClass(models.Class{Name: "Chem", FeePerStudent: 30, InstituteFeePercentage: 10})
	teacherID := store.AddTeacher(models.Teacher{Name: "Ruwan", Active: true})

	// Last instant of March is in; first instant of April is out.
	store.AddCollection(models.DailyCollection{
		TeacherID: teacherID, ClassID: classID,
		Date:   time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC),
		Amount: 100, StudentCount: 2,
	})
	store.AddCollection(models.DailyCollection{
		TeacherID: teacherID, ClassID: classID,
		Date:   time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		Amount: 999, StudentCount: 9,
	})

	svc := newTestPayrollService(store, nil)
	report, err := svc.TeacherReport(context.Background(), teacherID, "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, 100.0, report.Stats.TotalCollection)
	assert.Equal(t, 2, report.Stats.TotalStudents)
}

func TestTeacherReportSkipsDanglingClassReference(t *testing.T) {
	store := repository.NewMemStore()
	classID := store.AddClass(models.Class{Name: "Bio", FeePerStudent: 25, InstituteFeePercentage: 15})
	teacherID := store.AddTeacher(models.Teacher{Name: "Sunila", Active: true})

	store.AddCollection(models.DailyCollection{
		TeacherID: teacherID, ClassID: classID, Date: day(t, "2024-07-03"),
		Amount: 400, StudentCount: 8, TuteCostPerStudent: 5,
	})
	store.AddCollection(models.DailyCollection{
		TeacherID: teacherID, ClassID: "missing-class", Date: day(t, "2024-07-04"),
		Amount: 500, StudentCount: 10,
	})

	svc := newTestPayrollService(store, nil)
	report, err := svc.TeacherReport(context.Background(), teacherID, "2024-07-01")
	require.NoError(t, err)

	// The dangling row contributes nothing, not even its student count.
	assert.Equal(t, 400.0, report.Stats.TotalCollection)
	assert.Equal(t, 8, report.Stats.TotalStudents)
	require.Len(t, report.Details.ByClass, 1)
	assert.Equal(t, classID, report.Details.ByClass[0].ClassID)
}

func TestTeacherReportGroupsByClassID(t *testing.T) {
	store := repository.NewMemStore()
	// Two distinct classes sharing a display name stay separate lines.
	first := store.AddClass(models.Class{Name: "Revision", FeePerStudent: 20, InstituteFeePercentage: 10})
	second := store.AddClass(models.Class{Name: "Revision", FeePerStudent: 35, InstituteFeePercentage: 20})
	teacherID := store.AddTeacher(models.Teacher{Name: "Priya", Active: true})

	store.AddCollection(models.DailyCollection{
		TeacherID: teacherID, ClassID: first, Date: day(t, "2024-08-01"), Amount: 200, StudentCount: 4,
	})
	store.AddCollection(models.DailyCollection{
		TeacherID: teacherID, ClassID: second, Date: day(t, "2024-08-02"), Amount: 300, StudentCount: 5,
	})
	store.AddCollection(models.DailyCollection{
		TeacherID: teacherID, ClassID: first, Date: day(t, "2024-08-08"), Amount: 100, StudentCount: 2,
	})

	svc := newTestPayrollService(store, nil)
	report, err := svc.TeacherReport(context.Background(), teacherID, "2024-08-01")
	require.NoError(t, err)

	require.Len(t, report.Details.ByClass, 2)
	assert.Equal(t, first, report.Details.ByClass[0].ClassID)
	assert.Equal(t, 300.0, report.Details.ByClass[0].TotalCollection)
	assert.Equal(t, 6, report.Details.ByClass[0].TotalStudents)
	assert.Equal(t, second, report.Details.ByClass[1].ClassID)
	assert.Equal(t, 300.0, report.Details.ByClass[1].TotalCollection)
}

func TestTeacherReportNetPayCanGoNegative(t *testing.T) {
	store := repository.NewMemStore()
	classID := store.AddClass(models.Class{Name: "ICT", FeePerStudent: 20, InstituteFeePercentage: 10})
	teacherID := store.AddTeacher(models.Teacher{Name: "Dilshan", Active: true})

	store.AddCollection(models.DailyCollection{
		TeacherID: teacherID, ClassID: classID, Date: day(t, "2024-09-05"),
		Amount: 100, StudentCount: 2,
	})
	store.AddDeduction(models.Deduction{
		TeacherID: teacherID, Type: "advance", Amount: 500, Date: day(t, "2024-09-10"),
	})

	svc := newTestPayrollService(store, nil)
	report, err := svc.TeacherReport(context.Background(), teacherID, "2024-09-01")
	require.NoError(t, err)
	assert.Equal(t, -410.0, report.Stats.NetPay)
}

func TestTeacherReportEmptyPeriod(t *testing.T) {
	store := repository.NewMemStore()
	teacherID := store.AddTeacher(models.Teacher{Name: "Idle", Active: true})

	svc := newTestPayrollService(store, nil)
	report, err := svc.TeacherReport(context.Background(), teacherID, "2024-10-01")
	require.NoError(t, err)

	assert.Equal(t, dto.SalaryStats{}, report.Stats)
	require.NotNil(t, report.Details.ByClass)
	require.NotNil(t, report.Details.Deductions)
	assert.Empty(t, report.Details.ByClass)
	assert.Empty(t, report.Details.Deductions)
}

func TestTeacherReportUnknownTeacher(t *testing.T) {
	svc := newTestPayrollService(repository.NewMemStore(), nil)
	_, err := svc.TeacherReport(context.Background(), "nope", "2024-03-01")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestMonthlyReportsCoversAllActiveTeachers(t *testing.T) {
	store := repository.NewMemStore()
	classID := store.AddClass(models.Class{Name: "Physics", FeePerStudent: 50, InstituteFeePercentage: 10})
	first := store.AddTeacher(models.Teacher{Name: "A", Active: true})
	second := store.AddTeacher(models.Teacher{Name: "B", Active: true})
	store.AddTeacher(models.Teacher{Name: "Retired", Active: false})

	store.AddCollection(models.DailyCollection{
		TeacherID: first, ClassID: classID, Date: day(t, "2024-03-05"), Amount: 500, StudentCount: 10,
	})

	svc := newTestPayrollService(store, nil)
	reports, cached, err := svc.MonthlyReports(context.Background(), "2024-03-01")
	require.NoError(t, err)
	assert.False(t, cached)

	// Active teachers only, insertion order, one entry each even with no
	// activity.
	require.Len(t, reports, 2)
	assert.Equal(t, first, reports[0].TeacherID)
	assert.Equal(t, 500.0, reports[0].Stats.TotalCollection)
	assert.Equal(t, second, reports[1].TeacherID)
	assert.Equal(t, 0.0, reports[1].Stats.TotalCollection)
}

func TestFinalizeMonth(t *testing.T) {
	store := repository.NewMemStore()
	classID := store.AddClass(models.Class{Name: "Physics", FeePerStudent: 50, InstituteFeePercentage: 10})
	teacherID := store.AddTeacher(models.Teacher{Name: "A", Active: true})
	store.AddCollection(models.DailyCollection{
		TeacherID: teacherID, ClassID: classID, Date: day(t, "2024-03-05"), Amount: 500, StudentCount: 10,
	})

	runs := &fakeRunStore{}
	svc := newTestPayrollService(store, runs)

	run, err := svc.FinalizeMonth(context.Background(), "2024-03-15", "admin-1")
	require.NoError(t, err)
	assert.Equal(t, "2024-03", run.Month)
	assert.Equal(t, "admin-1", run.FinalizedBy)

	var snapshot []dto.SalaryReport
	require.NoError(t, json.Unmarshal(run.Report, &snapshot))
	require.Len(t, snapshot, 1)
	assert.Equal(t, 500.0, snapshot[0].Stats.TotalCollection)

	_, err = svc.FinalizeMonth(context.Background(), "2024-03-20", "admin-1")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrFinalized.Code, appErr.Code)

	listed, err := svc.Runs(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)

	fetched, err := svc.Run(context.Background(), listed[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-03", fetched.Month)
}
