package dto

// CreateUserRequest provisions an account. Teacher accounts must reference
// an existing teacher so self-service salary lookups resolve.
type CreateUserRequest struct {
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=6"`
	FullName  string  `json:"full_name" validate:"required,min=2,max=120"`
	Role      string  `json:"role" validate:"required,oneof=ADMIN STAFF TEACHER"`
	TeacherID *string `json:"teacher_id,omitempty" validate:"omitempty,uuid4"`
}

// ListUsersQuery carries list filters from the query string.
type ListUsersQuery struct {
	Search string `form:"search"`
	Role   string `form:"role"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}
