package models

import "time"

// Class represents a course offering. InstituteFeePercentage is the share
// of each collection the institute retains as a flat fee, in [0,100].
type Class struct {
	ID                     string    `db:"id" json:"id"`
	Name                   string    `db:"name" json:"name"`
	FeePerStudent          float64   `db:"fee_per_student" json:"fee_per_student"`
	InstituteFeePercentage float64   `db:"institute_fee_percentage" json:"institute_fee_percentage"`
	CreatedAt              time.Time `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time `db:"updated_at" json:"updated_at"`
}
