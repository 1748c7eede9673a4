package models

import "time"

// DailyCollection is one attendance/revenue event: a teacher taught a class
// on a date, StudentCount students attended and Amount total money was
// collected. The per-student cost rates are entry-level overrides and may
// differ between collections for the same class.
type DailyCollection struct {
	ID                  string    `db:"id" json:"id"`
	Date                time.Time `db:"date" json:"date"`
	TeacherID           string    `db:"teacher_id" json:"teacher_id"`
	ClassID             string    `db:"class_id" json:"class_id"`
	Amount              float64   `db:"amount" json:"amount"`
	StudentCount        int       `db:"student_count" json:"student_count"`
	TuteCostPerStudent  float64   `db:"tute_cost_per_student" json:"tute_cost_per_student"`
	PostalFeePerStudent float64   `db:"postal_fee_per_student" json:"postal_fee_per_student"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

// CollectionWithClass joins a collection row with its class configuration.
/// The class columns are nullable: a dangling class reference yields nil
// fields and the aggregator skips the row.
type CollectionWithClass struct {
	DailyCollection
	ClassName              *string  `db:"class_name" json:"class_name,omitempty"`
	ClassFeePerStudent     *float64 `db:"class_fee_per_student" json:"class_fee_per_student,omitempty"`
	InstituteFeePercentage *float64 `db:"institute_fee_percentage" json:"institute_fee_percentage,omitempty"`
}

// HasClass reports whether the class join resolved.
func (c CollectionWithClass) HasClass() bool {
	return c.ClassName != nil
}

// CollectionFilter captures filters for listing collections.
type CollectionFilter struct {
	TeacherID string
	// Day restricts results to a single calendar day when non-zero.
	Day time.Time
}
