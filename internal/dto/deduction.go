package dto

// CreateDeductionRequest records a manual deduction against a teacher.
type CreateDeductionRequest struct {
	TeacherID   string  `json:"teacherId" validate:"required,uuid4"`
	Type        string  `json:"type" validate:"required,min=1,max=64"`
	Amount      float64 `json:"amount" validate:"gte=0"`
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=255"`
}

// UpsertRateRequest sets a teacher's commission percentage for a class.
type UpsertRateRequest struct {
	TeacherID  string  `json:"teacherId" validate:"required,uuid4"`
	ClassID    string  `json:"classId" validate:"required,uuid4"`
	Percentage float64 `json:"percentage" validate:"gte=0,lte=100"`
}
