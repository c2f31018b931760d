package dto

import (
	"reviewhub/internal/api/models"
)

// CreateGenreDTO for POST /genres
type CreateGenreDTO struct {
	Name string `json:"name" binding:"required,max=256"`
	Slug string `json:"slug" binding:"required,max=50"`
}

// UpdateGenreDTO for PATCH /genres/:slug
type UpdateGenreDTO struct {
	Name string `json:"name" binding:"required,max=256"`
}

// GenreResponse for returning genre information
type GenreResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// FromModelToGenreResponse converts a Genre model to GenreResponse DTO
func FromModelToGenreResponse(genre *models.Genre) *GenreResponse {
	return &GenreResponse{
		Name: genre.Name,
		Slug: genre.Slug,
	}
}

// PaginatedGenreResponse for returning paginated genres
type PaginatedGenreResponse struct {
	Data       []GenreResponse `json:"data"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	Total      int             `json:"total"`
	TotalPages int             `json:"total_pages"`
}

// NewPaginatedGenreResponse creates a paginated genre response
func NewPaginatedGenreResponse(data []GenreResponse, total, page, pageSize int) *PaginatedGenreResponse {
	totalPages := total / pageSize
	if total%pageSize != 0 {
		totalPages++
	}

	return &PaginatedGenreResponse{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}
