package models

import "time"

// TeacherRate is a per-teacher-per-class commission percentage. The salary
// aggregation does not consult it: gross pay is defined as 100% of the
// collected amount and institute costs are taken as deductions. The field
// is kept for administration screens and a possible future commission
// split.
type TeacherRate struct {
	ID         string    `db:"id" json:"id"`
	TeacherID  string    `db:"teacher_id" json:"teacher_id"`
	ClassID    string    `db:"class_id" json:"class_id"`
	Percentage float64   `db:"percentage" json:"percentage"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
