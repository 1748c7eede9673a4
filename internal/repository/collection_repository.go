package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sahana-institute/payroll-api/internal/models"
)

// CollectionRepository manages persistence for daily collections.
type CollectionRepository struct {
	db *sqlx.DB
}

// NewCollectionRepository constructs a CollectionRepository.
func NewCollectionRepository(db *sqlx.DB) *CollectionRepository {
	return &CollectionRepository{db: db}
}

const collectionColumns = "c.id, c.date, c.teacher_id, c.class_id, c.amount, c.student_count, c.tute_cost_per_student, c.postal_fee_per_student, c.created_at, c.updated_at"

const collectionJoinColumns = collectionColumns + ", cl.name AS class_name, cl.fee_per_student AS class_fee_per_student, cl.institute_fee_percentage"

// FindByTeacherAndPeriod returns a teacher's collections within the closed
// interval [from, to], each joined with its class configuration. The join
// is LEFT so rows with a dangling class reference still come back; the
// aggregator skips them.
func (r *CollectionRepository) FindByTeacherAndPeriod(ctx context.Context, teacherID string, from, to time.Time) ([]models.CollectionWithClass, error) {
	query := fmt.Sprintf(`SELECT %s FROM daily_collections c
		LEFT JOIN classes cl ON cl.id = c.class_id
		WHERE c.teacher_id = $1 AND c.date >= $2 AND c.date <= $3
		ORDER BY c.date ASC, c.created_at ASC`, collectionJoinColumns)
	var rows []models.CollectionWithClass
	if err := r.db.SelectContext(ctx, &rows, query, teacherID, from, to); err != nil {
		return nil, fmt.Errorf("find collections for teacher %s: %w", teacherID, err)
	}
	return rows, nil
}

// List returns collections matching the filter, joined with class data,
// newest first.
func (r *CollectionRepository) List(ctx context.Context, filter models.CollectionFilter) ([]models.CollectionWithClass, error) {
	base := fmt.Sprintf("SELECT %s FROM daily_collections c LEFT JOIN classes cl ON cl.id = c.class_id WHERE 1=1", collectionJoinColumns)
	var args []interface{}

	if filter.TeacherID != "" {
		args = append(args, filter.TeacherID)
		base += fmt.Sprintf(" AND c.teacher_id = $%d", len(args))
	}
	if !filter.Day.IsZero() {
		day := filter.Day.UTC().Truncate(24 * time.Hour)
		args = append(args, day, day.Add(24*time.Hour))
		base += fmt.Sprintf(" AND c.date >= $%d AND c.date < $%d", len(args)-1, len(args))
	}

	base += " ORDER BY c.date DESC, c.created_at DESC"

	var rows []models.CollectionWithClass
	if err := r.db.SelectContext(ctx, &rows, base, args...); err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return rows, nil
}

// FindByID fetches one collection row.
func (r *CollectionRepository) FindByID(ctx context.Context, id string) (*models.DailyCollection, error) {
	const query = `SELECT id, date, teacher_id, class_id, amount, student_count, tute_cost_per_student, postal_fee_per_student, created_at, updated_at FROM daily_collections WHERE id = $1`
	var row models.DailyCollection
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// Create inserts a new collection record.
func (r *CollectionRepository) Create(ctx context.Context, collection *models.DailyCollection) error {
	if collection.ID == "" {
		collection.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if collection.CreatedAt.IsZero() {
		collection.CreatedAt = now
	}
	collection.UpdatedAt = now

	const query = `INSERT INTO daily_collections (id, date, teacher_id, class_id, amount, student_count, tute_cost_per_student, postal_fee_per_student, created_at, updated_at)
		VALUES (:id, :date, :teacher_id, :class_id, :amount, :student_count, :tute_cost_per_student, :postal_fee_per_student, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, collection); err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	return nil
}

// Update modifies an existing collection record.
func (r *CollectionRepository) Update(ctx context.Context, collection *models.DailyCollection) error {
	collection.UpdatedAt = time.Now().UTC()
	const query = `UPDATE daily_collections SET date = :date, teacher_id = :teacher_id, class_id = :class_id, amount = :amount, student_count = :student_count, tute_cost_per_student = :tute_cost_per_student, postal_fee_per_student = :postal_fee_per_student, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, collection); err != nil {
		return fmt.Errorf("update collection: %w", err)
	}
	return nil
}

// Delete removes a collection record.
func (r *CollectionRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM daily_collections WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	return nil
}
