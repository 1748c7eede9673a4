package models

import (
	"encoding/json"
	"time"
)

// PayrollRun is an immutable snapshot of a finalized month. Report holds
// the full per-teacher salary report payload as produced at finalization
// time; later edits to collections or deductions do not touch it.
type PayrollRun struct {
	ID          string          `db:"id" json:"id"`
	Month       string          `db:"month" json:"month"` // YYYY-MM
	PeriodStart time.Time       `db:"period_start" json:"period_start"`
	PeriodEnd   time.Time       `db:"period_end" json:"period_end"`
	Report      json.RawMessage `db:"report" json:"report"`
	FinalizedBy string          `db:"finalized_by" json:"finalized_by"`
	FinalizedAt time.Time       `db:"finalized_at" json:"finalized_at"`
}
