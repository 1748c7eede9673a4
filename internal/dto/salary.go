package dto

import "time"

// Period is the closed reporting interval, first instant to last instant of
// one calendar month.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// TeacherInfo identifies the teacher a report belongs to.
type TeacherInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SalaryStats carries the monthly totals for one teacher.
type SalaryStats struct {
	TotalCollection     float64 `json:"totalCollection"`
	TotalStudents       int     `json:"totalStudents"`
	GrossPay            float64 `json:"grossPay"`
	TotalTuteCost       float64 `json:"totalTuteCost"`
	TotalPostalFee      float64 `json:"totalPostalFee"`
	TotalInstituteFee   float64 `json:"totalInstituteFee"`
	AutomaticDeductions float64 `json:"automaticDeductions"`
	ManualDeductions    float64 `json:"manualDeductions"`
	TotalDeductions     float64 `json:"totalDeductions"`
	NetPay              float64 `json:"netPay"`
	InstituteRetained   float64 `json:"instituteRetained"`
}

// ClassSummary is the per-class rollup within one teacher's report.
// Entries keep first-seen order; grouping is by class id, the name is
// display-only.
type ClassSummary struct {
	ClassID                string  `json:"classId"`
	ClassName              string  `json:"className"`
	TotalCollection        float64 `json:"totalCollection"`
	TotalStudents          int     `json:"totalStudents"`
	FeePerStudent          float64 `json:"feePerStudent"`
	TuteCostPerStudent     float64 `json:"tuteCostPerStudent"`
	PostalFeePerStudent    float64 `json:"postalFeePerStudent"`
	InstituteFeePercentage float64 `json:"instituteFeePercentage"`
	TotalTuteCost          float64 `json:"totalTuteCost"`
	TotalPostalFee         float64 `json:"totalPostalFee"`
	TotalInstituteFee      float64 `json:"totalInstituteFee"`
	GrossPay               float64 `json:"grossPay"`
}

// DeductionDetail is a manual deduction carried through for display.
type DeductionDetail struct {
	Type        string    `json:"type"`
	Amount      float64   `json:"amount"`
	Date        time.Time `json:"date"`
	Description *string   `json:"description,omitempty"`
}

// SalaryDetails groups the per-class breakdown and the raw deduction list.
type SalaryDetails struct {
	ByClass    []ClassSummary    `json:"byClass"`
	Deductions []DeductionDetail `json:"deductions"`
}

// SalaryReport is the aggregator output for one teacher and one month.
type SalaryReport struct {
	TeacherID string        `json:"teacherId"`
	Teacher   TeacherInfo   `json:"teacher"`
	Period    Period        `json:"period"`
	Stats     SalaryStats   `json:"stats"`
	Details   SalaryDetails `json:"details"`
}
