package dto

import (
	"reviewhub/internal/api/models"
)

// CreateTitleDTO used for POST /titles. Related entities are referenced by
// slug on the write side; the read side embeds the full objects.
type CreateTitleDTO struct {
	Name        string   `json:"name" binding:"required,max=256"`
	Year        int      `json:"year" binding:"required"`
	Description string   `json:"description"`
	Genre       []string `json:"genre"`
	Category    string   `json:"category" binding:"required"`
}

// UpdateTitleDTO used for PATCH /titles/:title_id (partial updates allowed)
type UpdateTitleDTO struct {
	Name        *string   `json:"name,omitempty" binding:"omitempty,max=256"`
	Year        *int      `json:"year,omitempty"`
	Description *string   `json:"description,omitempty"`
	Genre       *[]string `json:"genre,omitempty"`
	Category    *string   `json:"category,omitempty"`
}

// TitleResponse is the read shape: nested genre/category objects plus the
// rating computed from the current review set (null when unreviewed).
type TitleResponse struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Year        int               `json:"year"`
	Rating      *float64          `json:"rating"`
	Description string            `json:"description"`
	Genre       []GenreResponse   `json:"genre"`
	Category    *CategoryResponse `json:"category"`
}

// FromModelToTitleResponse converts a Title model and its computed rating to
// the read shape
func FromModelToTitleResponse(title *models.Title, rating *float64) *TitleResponse {
	genres := make([]GenreResponse, 0, len(title.Genres))
	for i := range title.Genres {
		genres = append(genres, *FromModelToGenreResponse(&title.Genres[i]))
	}

	var category *CategoryResponse
	if title.Category != nil {
		category = FromModelToCategoryResponse(title.Category)
	}

	return &TitleResponse{
		ID:          title.ID,
		Name:        title.Name,
		Year:        title.Year,
		Rating:      rating,
		Description: title.Description,
		Genre:       genres,
		Category:    category,
	}
}

// PaginatedTitleResponse for returning paginated titles
type PaginatedTitleResponse struct {
	Data       []TitleResponse `json:"data"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	Total      int             `json:"total"`
	TotalPages int             `json:"total_pages"`
}

// NewPaginatedTitleResponse creates a paginated title response
func NewPaginatedTitleResponse(data []TitleResponse, total, page, pageSize int) *PaginatedTitleResponse {
	totalPages := total / pageSize
	if total%pageSize != 0 {
		totalPages++
	}

	return &PaginatedTitleResponse{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

// TitleFilters holds the supported list filters for GET /titles
type TitleFilters struct {
	Category string
	Genre    string
	Name     string
	Year     *int
	Page     int
	PageSize int
}
