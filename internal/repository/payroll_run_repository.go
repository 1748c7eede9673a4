package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sahana-institute/payroll-api/internal/models"
)

// PayrollRunRepository manages finalized payroll snapshots.
type PayrollRunRepository struct {
	db *sqlx.DB
}

// NewPayrollRunRepository constructs a PayrollRunRepository.
func NewPayrollRunRepository(db *sqlx.DB) *PayrollRunRepository {
	return &PayrollRunRepository{db: db}
}

const payrollRunColumns = "id, month, period_start, period_end, report, finalized_by, finalized_at"

// Create persists an immutable payroll run. The month column carries a
// unique constraint, so finalizing the same month twice fails.
func (r *PayrollRunRepository) Create(ctx context.Context, run *models.PayrollRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.FinalizedAt.IsZero() {
		run.FinalizedAt = time.Now().UTC()
	}

	const query = `INSERT INTO payroll_runs (id, month, period_start, period_end, report, finalized_by, finalized_at)
		VALUES (:id, :month, :period_start, :period_end, :report, :finalized_by, :finalized_at)`
	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("create payroll run: %w", err)
	}
	return nil
}

// FindByMonth fetches the run finalized for a YYYY-MM month, if any.
func (r *PayrollRunRepository) FindByMonth(ctx context.Context, month string) (*models.PayrollRun, error) {
	query := fmt.Sprintf("SELECT %s FROM payroll_runs WHERE month = $1", payrollRunColumns)
	var run models.PayrollRun
	if err := r.db.GetContext(ctx, &run, query, month); err != nil {
		return nil, err
	}
	return &run, nil
}

// FindByID fetches a payroll run by ID.
func (r *PayrollRunRepository) FindByID(ctx context.Context, id string) (*models.PayrollRun, error) {
	query := fmt.Sprintf("SELECT %s FROM payroll_runs WHERE id = $1", payrollRunColumns)
	var run models.PayrollRun
	if err := r.db.GetContext(ctx, &run, query, id); err != nil {
		return nil, err
	}
	return &run, nil
}

// List returns payroll runs newest first.
func (r *PayrollRunRepository) List(ctx context.Context) ([]models.PayrollRun, error) {
	query := fmt.Sprintf("SELECT %s FROM payroll_runs ORDER BY month DESC", payrollRunColumns)
	var runs []models.PayrollRun
	if err := r.db.SelectContext(ctx, &runs, query); err != nil {
		return nil, fmt.Errorf("list payroll runs: %w", err)
	}
	return runs, nil
}
