package dto

import (
	"reviewhub/internal/api/models"
)

// CreateCategoryDTO for POST /categories
type CreateCategoryDTO struct {
	Name string `json:"name" binding:"required,max=256"`
	Slug string `json:"slug" binding:"required,max=50"`
}

// UpdateCategoryDTO for PATCH /categories/:slug (the slug is the identity,
// only the display name can change)
type UpdateCategoryDTO struct {
	Name string `json:"name" binding:"required,max=256"`
}

// CategoryResponse for returning category information
type CategoryResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// FromModelToCategoryResponse converts a Category model to CategoryResponse DTO
func FromModelToCategoryResponse(category *models.Category) *CategoryResponse {
	return &CategoryResponse{
		Name: category.Name,
		Slug: category.Slug,
	}
}

// PaginatedCategoryResponse for returning paginated categories
type PaginatedCategoryResponse struct {
	Data       []CategoryResponse `json:"data"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	Total      int                `json:"total"`
	TotalPages int                `json:"total_pages"`
}

// NewPaginatedCategoryResponse creates a paginated category response
func NewPaginatedCategoryResponse(data []CategoryResponse, total, page, pageSize int) *PaginatedCategoryResponse {
	totalPages := total / pageSize
	if total%pageSize != 0 {
		totalPages++
	}

	return &PaginatedCategoryResponse{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}
