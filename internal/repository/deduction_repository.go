package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sahana-institute/payroll-api/internal/models"
)

// DeductionRepository manages persistence for manual deductions.
type DeductionRepository struct {
	db *sqlx.DB
}

// NewDeductionRepository constructs a DeductionRepository.
func NewDeductionRepository(db *sqlx.DB) *DeductionRepository {
	return &DeductionRepository{db: db}
}

const deductionColumns = "id, teacher_id, type, amount, date, description, created_at, updated_at"

// FindByTeacherAndPeriod returns a teacher's deductions within the closed
// interval [from, to].
func (r *DeductionRepository) FindByTeacherAndPeriod(ctx context.Context, teacherID string, from, to time.Time) ([]models.Deduction, error) {
	query := fmt.Sprintf(`SELECT %s FROM deductions WHERE teacher_id = $1 AND date >= $2 AND date <= $3 ORDER BY date ASC, created_at ASC`, deductionColumns)
	var rows []models.Deduction
	if err := r.db.SelectContext(ctx, &rows, query, teacherID, from, to); err != nil {
		return nil, fmt.Errorf("find deductions for teacher %s: %w", teacherID, err)
	}
	return rows, nil
}

// ListByTeacher returns all deductions recorded against a teacher, newest
// first.
func (r *DeductionRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.Deduction, error) {
	query := fmt.Sprintf("SELECT %s FROM deductions WHERE teacher_id = $1 ORDER BY date DESC, created_at DESC", deductionColumns)
	var rows []models.Deduction
	if err := r.db.SelectContext(ctx, &rows, query, teacherID); err != nil {
		return nil, fmt.Errorf("list deductions: %w", err)
	}
	return rows, nil
}

// Create inserts a new deduction record.
func (r *DeductionRepository) Create(ctx context.Context, deduction *models.Deduction) error {
	if deduction.ID == "" {
		deduction.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if deduction.CreatedAt.IsZero() {
		deduction.CreatedAt = now
	}
	deduction.UpdatedAt = now

	const query = `INSERT INTO deductions (id, teacher_id, type, amount, date, description, created_at, updated_at)
		VALUES (:id, :teacher_id, :type, :amount, :date, :description, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, deduction); err != nil {
		return fmt.Errorf("create deduction: %w", err)
	}
	return nil
}

// Delete removes a deduction record.
func (r *DeductionRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM deductions WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete deduction: %w", err)
	}
	return nil
}
