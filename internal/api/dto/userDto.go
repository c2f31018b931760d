package dto

import (
	"reviewhub/internal/api/models"
)

// CreateUserDTO for POST /users (admin only)
type CreateUserDTO struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Role      string `json:"role"`
	Bio       string `json:"bio"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// UpdateUserDTO for PATCH /users/:username and /users/me (partial updates)
type UpdateUserDTO struct {
	Email     *string `json:"email,omitempty" binding:"omitempty,email"`
	Role      *string `json:"role,omitempty"`
	Bio       *string `json:"bio,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}

// UserResponse for returning user information
type UserResponse struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Bio       string `json:"bio"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// FromModelToUserResponse converts a User model to UserResponse DTO
func FromModelToUserResponse(user *models.User) *UserResponse {
	return &UserResponse{
		Username:  user.Username,
		Email:     user.Email,
		Role:      string(user.Role),
		Bio:       user.Bio,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
}

// PaginatedUserResponse for returning paginated users
type PaginatedUserResponse struct {
	Data       []UserResponse `json:"data"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	Total      int            `json:"total"`
	TotalPages int            `json:"total_pages"`
}

// NewPaginatedUserResponse creates a paginated user response
func NewPaginatedUserResponse(data []UserResponse, total, page, pageSize int) *PaginatedUserResponse {
	totalPages := total / pageSize
	if total%pageSize != 0 {
		totalPages++
	}

	return &PaginatedUserResponse{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}
