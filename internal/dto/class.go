package dto

// CreateClassRequest is the payload for creating a class.
type CreateClassRequest struct {
	Name                   string  `json:"name" validate:"required,min=1,max=120"`
	FeePerStudent          float64 `json:"feePerStudent" validate:"gte=0"`
	InstituteFeePercentage float64 `json:"instituteFeePercentage" validate:"gte=0,lte=100"`
}

// UpdateClassRequest is the payload for updating a class.
type UpdateClassRequest struct {
	Name                   *string  `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	FeePerStudent          *float64 `json:"feePerStudent,omitempty" validate:"omitempty,gte=0"`
	InstituteFeePercentage *float64 `json:"instituteFeePercentage,omitempty" validate:"omitempty,gte=0,lte=100"`
}
