package dto

// CreateUserRequest provisions a user at the identity authority.
type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// UpdateUserRequest is a partial update; omitted fields are left unchanged.
type UpdateUserRequest struct {
	Email     *string `json:"email"`
	Role      *string `json:"role"`
	Suspended *bool   `json:"suspended"`
}

// UserRecordResponse is the managed user shape returned by admin endpoints.
type UserRecordResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role"`
	Suspended bool   `json:"suspended"`
}

// UserListResponse wraps the user collection.
type UserListResponse struct {
	Users []UserRecordResponse `json:"users"`
}
