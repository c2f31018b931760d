package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/middleware"
	"reviewhub/internal/api/service"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	reviewService service.ReviewService
}

func NewReviewHandler(reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// RegisterRoutes registers review routes nested under a title. Reads are
// public, writes need an authenticated caller; moderation rights are
// resolved in the service.
func (h *ReviewHandler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	reviews := rg.Group("/titles/:title_id/reviews")
	{
		reviews.GET("", h.ListByTitle)
		reviews.GET("/:review_id", h.Get)

		reviews.POST("", authMW, h.Create)
		reviews.PATCH("/:review_id", authMW, h.Update)
		reviews.DELETE("/:review_id", authMW, h.Delete)
	}
}

func parseReviewPath(c *gin.Context) (titleID, reviewID int64, ok bool) {
	var err error
	titleID, err = strconv.ParseInt(c.Param("title_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid title ID"})
		return 0, 0, false
	}
	reviewID, err = strconv.ParseInt(c.Param("review_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review ID"})
		return 0, 0, false
	}
	return titleID, reviewID, true
}

// ListByTitle handles GET /titles/:title_id/reviews
func (h *ReviewHandler) ListByTitle(c *gin.Context) {
	titleID, err := strconv.ParseInt(c.Param("title_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid title ID"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	page, pageSize := parsePagination(c)

	resp, err := h.reviewService.GetByTitle(ctx, titleID, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get handles GET /titles/:title_id/reviews/:review_id
func (h *ReviewHandler) Get(c *gin.Context) {
	titleID, reviewID, ok := parseReviewPath(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.reviewService.Get(ctx, titleID, reviewID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Create handles POST /titles/:title_id/reviews. The author is always the
// authenticated caller, never taken from the payload.
func (h *ReviewHandler) Create(c *gin.Context) {
	titleID, err := strconv.ParseInt(c.Param("title_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid title ID"})
		return
	}

	callerID, _, ok := middleware.CallerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var in dto.CreateReviewDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.reviewService.Create(ctx, callerID, titleID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Update handles PATCH /titles/:title_id/reviews/:review_id
func (h *ReviewHandler) Update(c *gin.Context) {
	titleID, reviewID, ok := parseReviewPath(c)
	if !ok {
		return
	}

	callerID, role, ok := middleware.CallerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var in dto.UpdateReviewDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.reviewService.Update(ctx, callerID, role, titleID, reviewID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete handles DELETE /titles/:title_id/reviews/:review_id
func (h *ReviewHandler) Delete(c *gin.Context) {
	titleID, reviewID, ok := parseReviewPath(c)
	if !ok {
		return
	}

	callerID, role, ok := middleware.CallerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.reviewService.Delete(ctx, callerID, role, titleID, reviewID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
