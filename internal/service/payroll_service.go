package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sahana-institute/payroll-api/internal/dto"
	"github.com/sahana-institute/payroll-api/internal/models"
	appErrors "github.com/sahana-institute/payroll-api/pkg/errors"
)

type collectionStore interface {
	FindByTeacherAndPeriod(ctx context.Context, teacherID string, from, to time.Time) ([]models.CollectionWithClass, error)
}

type deductionStore interface {
	FindByTeacherAndPeriod(ctx context.Context, teacherID string, from, to time.Time) ([]models.Deduction, error)
}

type teacherDirectory interface {
	ListActive(ctx context.Context) ([]models.Teacher, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

type payrollRunStore interface {
	Create(ctx context.Context, run *models.PayrollRun) error
	FindByMonth(ctx context.Context, month string) (*models.PayrollRun, error)
	FindByID(ctx context.Context, id string) (*models.PayrollRun, error)
	List(ctx context.Context) ([]models.PayrollRun, error)
}

// PayrollServiceConfig tunes report composition.
type PayrollServiceConfig struct {
	CacheTTL time.Duration
	// WorkerConcurrency bounds concurrent per-teacher computation. Zero or
	// negative means unbounded.
	WorkerConcurrency int
}

// PayrollService computes monthly salary reports. It is a pure
// read-and-fold over the collection and deduction stores; identical stored
// data and month always produce identical output.
type PayrollService struct {
	teachers    teacherDirectory
	collections collectionStore
	deductions  deductionStore
	runs        payrollRunStore
	cache       *CacheService
	metrics     *MetricsService
	logger      *zap.Logger
	cfg         PayrollServiceConfig
}

// PayrollServiceParams groups constructor dependencies.
type PayrollServiceParams struct {
	Teachers    teacherDirectory
	Collections collectionStore
	Deductions  deductionStore
	Runs        payrollRunStore
	Cache       *CacheService
	Metrics     *MetricsService
	Logger      *zap.Logger
	Config      PayrollServiceConfig
}

// NewPayrollService constructs a PayrollService.
func NewPayrollService(params PayrollServiceParams) *PayrollService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PayrollService{
		teachers:    params.Teachers,
		collections: params.Collections,
		deductions:  params.Deductions,
		runs:        params.Runs,
		cache:       params.Cache,
		metrics:     params.Metrics,
		logger:      logger,
		cfg:         params.Config,
	}
}

// ResolvePeriod maps any date inside a month onto the closed reporting
// interval [first day 00:00:00, last day 23:59:59] UTC. Accepts YYYY-MM-DD
// or YYYY-MM.
func ResolvePeriod(dateStr string) (dto.Period, error) {
	if dateStr == "" {
		return dto.Period{}, appErrors.Clone(appErrors.ErrValidation, "date is required")
	}
	parsed, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		parsed, err = time.Parse("2006-01", dateStr)
	}
	if err != nil {
		return dto.Period{}, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD")
	}

	start := time.Date(parsed.Year(), parsed.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	return dto.Period{Start: start, End: end}, nil
}

// MonthlyReports produces one salary report per active teacher for the
// month containing dateStr. The boolean reports cache utilisation.
func (s *PayrollService) MonthlyReports(ctx context.Context, dateStr string) ([]dto.SalaryReport, bool, error) {
	period, err := ResolvePeriod(dateStr)
	if err != nil {
		return nil, false, err
	}

	cacheKey := fmt.Sprintf("salary:month:%s", period.Start.Format("2006-01"))
	if s.cache != nil {
		var cached []dto.SalaryReport
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return cached, true, nil
		}
	}

	teachers, err := s.teachers.ListActive(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to list teachers")
	}

	reports := make([]dto.SalaryReport, len(teachers))
	g, gctx := errgroup.WithContext(ctx)
	if s.cfg.WorkerConcurrency > 0 {
		g.SetLimit(s.cfg.WorkerConcurrency)
	}
	for i, teacher := range teachers {
		i, teacher := i, teacher
		g.Go(func() error {
			report, err := s.composeReport(gctx, teacher, period)
			if err != nil {
				return err
			}
			reports[i] = *report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// No partial results: an incomplete payroll report is worse than
		// none.
		return nil, false, err
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, reports, s.cfg.CacheTTL)
	}
	return reports, false, nil
}

// TeacherReport produces the salary report for a single teacher.
func (s *PayrollService) TeacherReport(ctx context.Context, teacherID, dateStr string) (*dto.SalaryReport, error) {
	period, err := ResolvePeriod(dateStr)
	if err != nil {
		return nil, err
	}

	teacher, err := s.teachers.FindByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load teacher")
	}

	return s.composeReport(ctx, *teacher, period)
}

// composeReport folds one teacher's collections and deductions for the
// period into a salary report.
//
// The money model: the teacher's gross pay is 100% of the collected amount;
// tute material, postal and the institute percentage fee are deductions
// from it, and the institute's retained margin equals those automatic
// deductions. Per-teacher commission rates are deliberately not consulted
// here (see DESIGN.md).
func (s *PayrollService) composeReport(ctx context.Context, teacher models.Teacher, period dto.Period) (*dto.SalaryReport, error) {
	if s.metrics != nil {
		start := time.Now()
		defer func() { s.metrics.ObserveReportComposition(time.Since(start)) }()
	}

	collections, err := s.collections.FindByTeacherAndPeriod(ctx, teacher.ID, period.Start, period.End)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load collections")
	}

	stats := dto.SalaryStats{}
	byClass := make([]dto.ClassSummary, 0, 4)
	classIndex := make(map[string]int)

	for _, row := range collections {
		if !row.HasClass() {
			// Dangling class reference: the row cannot contribute an
			// institute fee or a class line, so it is excluded entirely.
			s.logger.Warn("collection skipped, class missing",
				zap.String("collection_id", row.ID),
				zap.String("class_id", row.ClassID))
			continue
		}

		tuteCost := float64(row.StudentCount) * row.TuteCostPerStudent
		postalFee := float64(row.StudentCount) * row.PostalFeePerStudent
		instituteFee := row.Amount * (*row.InstituteFeePercentage / 100)

		stats.TotalCollection += row.Amount
		stats.TotalStudents += row.StudentCount
		stats.TotalTuteCost += tuteCost
		stats.TotalPostalFee += postalFee
		stats.TotalInstituteFee += instituteFee

		// Group by class id, first-seen order. The class name is carried
		// for display only: two classes sharing a name stay separate.
		idx, seen := classIndex[row.ClassID]
		if !seen {
			byClass = append(byClass, dto.ClassSummary{
				ClassID:                row.ClassID,
				ClassName:              *row.ClassName,
				FeePerStudent:          *row.ClassFeePerStudent,
				TuteCostPerStudent:     row.TuteCostPerStudent,
				PostalFeePerStudent:    row.PostalFeePerStudent,
				InstituteFeePercentage: *row.InstituteFeePercentage,
			})
			idx = len(byClass) - 1
			classIndex[row.ClassID] = idx
		}
		entry := &byClass[idx]
		entry.TotalCollection += row.Amount
		entry.TotalStudents += row.StudentCount
		entry.TotalTuteCost += tuteCost
		entry.TotalPostalFee += postalFee
		entry.TotalInstituteFee += instituteFee
		entry.GrossPay = entry.TotalCollection
	}

	deductions, err := s.deductions.FindByTeacherAndPeriod(ctx, teacher.ID, period.Start, period.End)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load deductions")
	}

	deductionDetails := make([]dto.DeductionDetail, 0, len(deductions))
	for _, d := range deductions {
		stats.ManualDeductions += d.Amount
		deductionDetails = append(deductionDetails, dto.DeductionDetail{
			Type:        d.Type,
			Amount:      d.Amount,
			Date:        d.Date,
			Description: d.Description,
		})
	}

	stats.GrossPay = stats.TotalCollection
	stats.AutomaticDeductions = stats.TotalTuteCost + stats.TotalPostalFee + stats.TotalInstituteFee
	stats.TotalDeductions = stats.AutomaticDeductions + stats.ManualDeductions
	// Net pay may go negative when deductions exceed collection; that is
	// surfaced as-is, not clamped.
	stats.NetPay = stats.GrossPay - stats.TotalDeductions
	stats.InstituteRetained = stats.AutomaticDeductions

	return &dto.SalaryReport{
		TeacherID: teacher.ID,
		Teacher:   dto.TeacherInfo{ID: teacher.ID, Name: teacher.Name},
		Period:    period,
		Stats:     stats,
		Details: dto.SalaryDetails{
			ByClass:    byClass,
			Deductions: deductionDetails,
		},
	}, nil
}

// FinalizeMonth snapshots the month's reports into an immutable payroll
// run. A month can be finalized once.
func (s *PayrollService) FinalizeMonth(ctx context.Context, dateStr, finalizedBy string) (*models.PayrollRun, error) {
	if s.runs == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "payroll runs are not available in this mode")
	}
	period, err := ResolvePeriod(dateStr)
	if err != nil {
		return nil, err
	}
	month := period.Start.Format("2006-01")

	if existing, err := s.runs.FindByMonth(ctx, month); err == nil && existing != nil {
		return nil, appErrors.Clone(appErrors.ErrFinalized, fmt.Sprintf("payroll for %s is already finalized", month))
	} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to check existing payroll run")
	}

	reports, _, err := s.MonthlyReports(ctx, dateStr)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(reports)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode payroll snapshot")
	}

	run := &models.PayrollRun{
		Month:       month,
		PeriodStart: period.Start,
		PeriodEnd:   period.End,
		Report:      payload,
		FinalizedBy: finalizedBy,
		FinalizedAt: time.Now().UTC(),
	}
	if err := s.runs.Create(ctx, run); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to persist payroll run")
	}

	s.logger.Info("payroll finalized",
		zap.String("month", month),
		zap.String("finalized_by", finalizedBy),
		zap.Int("teachers", len(reports)))
	return run, nil
}

// Runs lists finalized payroll runs newest first.
func (s *PayrollService) Runs(ctx context.Context) ([]models.PayrollRun, error) {
	if s.runs == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "payroll runs are not available in this mode")
	}
	runs, err := s.runs.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to list payroll runs")
	}
	return runs, nil
}

// Run fetches one finalized payroll run.
func (s *PayrollService) Run(ctx context.Context, id string) (*models.PayrollRun, error) {
	if s.runs == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "payroll runs are not available in this mode")
	}
	run, err := s.runs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payroll run not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load payroll run")
	}
	return run, nil
}

// InvalidateMonth drops cached reports overlapping the given date's month.
// Collection and deduction mutations call this.
func (s *PayrollService) InvalidateMonth(ctx context.Context, date time.Time) {
	if s.cache == nil {
		return
	}
	key := fmt.Sprintf("salary:month:%s", date.UTC().Format("2006-01"))
	_ = s.cache.Invalidate(ctx, key)
}

// InvalidateAll drops every cached monthly report. Class rate changes call
// this since a rate edit affects any month the class appears in.
func (s *PayrollService) InvalidateAll(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, "salary:month:*")
}
