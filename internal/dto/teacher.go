package dto

// CreateTeacherRequest is the payload for registering a teacher.
type CreateTeacherRequest struct {
	Name    string  `json:"name" validate:"required,min=2,max=120"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=255"`
}

// UpdateTeacherRequest is the payload for updating a teacher profile.
type UpdateTeacherRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=255"`
	Active  *bool   `json:"active,omitempty"`
}

// ListTeachersQuery carries list filters from the query string.
type ListTeachersQuery struct {
	Search    string `form:"search"`
	Active    *bool  `form:"active"`
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order"`
}
