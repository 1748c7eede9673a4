package dto

// CreateCollectionRequest records a daily collection entry.
type CreateCollectionRequest struct {
	Date                string  `json:"date" validate:"required,datetime=2006-01-02"`
	TeacherID           string  `json:"teacherId" validate:"required,uuid4"`
	ClassID             string  `json:"classId" validate:"required,uuid4"`
	Amount              float64 `json:"amount" validate:"gte=0"`
	StudentCount        int     `json:"studentCount" validate:"gte=0"`
	TuteCostPerStudent  float64 `json:"tuteCostPerStudent" validate:"gte=0"`
	PostalFeePerStudent float64 `json:"postalFeePerStudent" validate:"gte=0"`
}

// UpdateCollectionRequest updates an existing collection entry. Teacher and
// class references are fixed at creation time.
type UpdateCollectionRequest struct {
	Date                *string  `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Amount              *float64 `json:"amount,omitempty" validate:"omitempty,gte=0"`
	StudentCount        *int     `json:"studentCount,omitempty" validate:"omitempty,gte=0"`
	TuteCostPerStudent  *float64 `json:"tuteCostPerStudent,omitempty" validate:"omitempty,gte=0"`
	PostalFeePerStudent *float64 `json:"postalFeePerStudent,omitempty" validate:"omitempty,gte=0"`
}

// ListCollectionsQuery carries list filters from the query string.
type ListCollectionsQuery struct {
	TeacherID string `form:"teacherId"`
	Date      string `form:"date"`
}
