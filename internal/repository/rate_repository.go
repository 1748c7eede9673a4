package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sahana-institute/payroll-api/internal/models"
)

// RateRepository manages per-teacher-per-class commission percentages.
type RateRepository struct {
	db *sqlx.DB
}

// NewRateRepository constructs a RateRepository.
func NewRateRepository(db *sqlx.DB) *RateRepository {
	return &RateRepository{db: db}
}

const rateColumns = "id, teacher_id, class_id, percentage, created_at, updated_at"

// ListByTeacher returns all rates configured for a teacher.
func (r *RateRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.TeacherRate, error) {
	query := fmt.Sprintf("SELECT %s FROM teacher_rates WHERE teacher_id = $1 ORDER BY created_at ASC", rateColumns)
	var rates []models.TeacherRate
	if err := r.db.SelectContext(ctx, &rates, query, teacherID); err != nil {
		return nil, fmt.Errorf("list rates: %w", err)
	}
	return rates, nil
}

// Upsert inserts the rate or updates the percentage when the
// (teacher, class) pair already exists.
func (r *RateRepository) Upsert(ctx context.Context, rate *models.TeacherRate) error {
	if rate.ID == "" {
		rate.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if rate.CreatedAt.IsZero() {
		rate.CreatedAt = now
	}
	rate.UpdatedAt = now

	const query = `INSERT INTO teacher_rates (id, teacher_id, class_id, percentage, created_at, updated_at)
		VALUES (:id, :teacher_id, :class_id, :percentage, :created_at, :updated_at)
		ON CONFLICT (teacher_id, class_id) DO UPDATE SET percentage = EXCLUDED.percentage, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, rate); err != nil {
		return fmt.Errorf("upsert rate: %w", err)
	}
	return nil
}

// Delete removes a rate by ID.
func (r *RateRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM teacher_rates WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete rate: %w", err)
	}
	return nil
}
