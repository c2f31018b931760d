package dto

import (
	"time"

	"reviewhub/internal/api/models"
)

// CreateReviewDTO for creating a review. The author never comes from the
// payload, it is derived from the authenticated caller.
type CreateReviewDTO struct {
	Text  string `json:"text" binding:"required,min=1,max=10000"`
	Score int    `json:"score" binding:"required,min=1,max=10"`
}

// UpdateReviewDTO for updating a review (partial updates allowed)
type UpdateReviewDTO struct {
	Text  *string `json:"text,omitempty" binding:"omitempty,min=1,max=10000"`
	Score *int    `json:"score,omitempty" binding:"omitempty,min=1,max=10"`
}

// ReviewResponse for returning review information
type ReviewResponse struct {
	ID      int64     `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	Score   int       `json:"score"`
	PubDate time.Time `json:"pub_date"`
}

// FromModelToReviewResponse converts a Review model to ReviewResponse DTO
func FromModelToReviewResponse(review *models.Review) *ReviewResponse {
	return &ReviewResponse{
		ID:      review.ID,
		Text:    review.Text,
		Author:  review.Author.Username,
		Score:   review.Score,
		PubDate: review.PubDate,
	}
}

// PaginatedReviewResponse for returning paginated reviews
type PaginatedReviewResponse struct {
	Data       []ReviewResponse `json:"data"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	Total      int              `json:"total"`
	TotalPages int              `json:"total_pages"`
}

// NewPaginatedReviewResponse creates a paginated review response
func NewPaginatedReviewResponse(data []ReviewResponse, total, page, pageSize int) *PaginatedReviewResponse {
	totalPages := total / pageSize
	if total%pageSize != 0 {
		totalPages++
	}

	return &PaginatedReviewResponse{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}
