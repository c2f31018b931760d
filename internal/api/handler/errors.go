package handler

import (
	"errors"
	"net/http"
	"strconv"

	"reviewhub/internal/api/apierrors"

	"github.com/gin-gonic/gin"
)

// respondError maps a service error onto the HTTP status taxonomy.
// Validation failures render as {"field": ["message", ...]}, everything else
// as a single error message.
func respondError(c *gin.Context, err error) {
	var fe apierrors.FieldErrors
	switch {
	case errors.As(err, &fe):
		c.JSON(http.StatusBadRequest, fe)
	case errors.Is(err, apierrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apierrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, apierrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apierrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apierrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// parsePagination reads ?page= and ?page_size= with sane defaults and caps
func parsePagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}
	if ps := c.Query("page_size"); ps != "" {
		if parsed, err := strconv.Atoi(ps); err == nil && parsed > 0 && parsed <= 100 {
			pageSize = parsed
		}
	}
	return page, pageSize
}
