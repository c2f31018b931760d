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

type CommentHandler struct {
	commentService service.CommentService
}

func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// RegisterRoutes registers comment routes nested under a review.
func (h *CommentHandler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	comments := rg.Group("/titles/:title_id/reviews/:review_id/comments")
	{
		comments.GET("", h.ListByReview)
		comments.GET("/:comment_id", h.Get)

		comments.POST("", authMW, h.Create)
		comments.PATCH("/:comment_id", authMW, h.Update)
		comments.DELETE("/:comment_id", authMW, h.Delete)
	}
}

func parseCommentPath(c *gin.Context) (titleID, reviewID, commentID int64, ok bool) {
	var err error
	titleID, err = strconv.ParseInt(c.Param("title_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid title ID"})
		return 0, 0, 0, false
	}
	reviewID, err = strconv.ParseInt(c.Param("review_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review ID"})
		return 0, 0, 0, false
	}
	commentID, err = strconv.ParseInt(c.Param("comment_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid comment ID"})
		return 0, 0, 0, false
	}
	return titleID, reviewID, commentID, true
}

// ListByReview handles GET /titles/:title_id/reviews/:review_id/comments
func (h *CommentHandler) ListByReview(c *gin.Context) {
	titleID, err := strconv.ParseInt(c.Param("title_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid title ID"})
		return
	}
	reviewID, err := strconv.ParseInt(c.Param("review_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review ID"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	page, pageSize := parsePagination(c)

	resp, err := h.commentService.GetByReview(ctx, titleID, reviewID, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get handles GET /titles/:title_id/reviews/:review_id/comments/:comment_id
func (h *CommentHandler) Get(c *gin.Context) {
	titleID, reviewID, commentID, ok := parseCommentPath(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.commentService.Get(ctx, titleID, reviewID, commentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Create handles POST /titles/:title_id/reviews/:review_id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	titleID, err := strconv.ParseInt(c.Param("title_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid title ID"})
		return
	}
	reviewID, err := strconv.ParseInt(c.Param("review_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review ID"})
		return
	}

	callerID, _, ok := middleware.CallerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var in dto.CreateCommentDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.commentService.Create(ctx, callerID, titleID, reviewID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Update handles PATCH /titles/:title_id/reviews/:review_id/comments/:comment_id
func (h *CommentHandler) Update(c *gin.Context) {
	titleID, reviewID, commentID, ok := parseCommentPath(c)
	if !ok {
		return
	}

	callerID, role, ok := middleware.CallerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var in dto.UpdateCommentDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.commentService.Update(ctx, callerID, role, titleID, reviewID, commentID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete handles DELETE /titles/:title_id/reviews/:review_id/comments/:comment_id
func (h *CommentHandler) Delete(c *gin.Context) {
	titleID, reviewID, commentID, ok := parseCommentPath(c)
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

	if err := h.commentService.Delete(ctx, callerID, role, titleID, reviewID, commentID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
