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

type TitleHandler struct {
	titleService service.TitleService
}

func NewTitleHandler(titleService service.TitleService) *TitleHandler {
	return &TitleHandler{titleService: titleService}
}

// RegisterRoutes registers title routes. Reads are public, writes are
// admin only.
func (h *TitleHandler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	titles := rg.Group("/titles")
	{
		titles.GET("", h.List)
		titles.GET("/:title_id", h.Get)

		titles.POST("", authMW, middleware.RequireAdmin(), h.Create)
		titles.PATCH("/:title_id", authMW, middleware.RequireAdmin(), h.Update)
		titles.DELETE("/:title_id", authMW, middleware.RequireAdmin(), h.Delete)
	}
}

// List handles GET /titles with optional category, genre, name and year
// filters.
func (h *TitleHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	page, pageSize := parsePagination(c)
	filters := dto.TitleFilters{
		Category: c.Query("category"),
		Genre:    c.Query("genre"),
		Name:     c.Query("name"),
		Page:     page,
		PageSize: pageSize,
	}
	if y := c.Query("year"); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year filter"})
			return
		}
		filters.Year = &year
	}

	resp, err := h.titleService.List(ctx, filters)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get handles GET /titles/:title_id
func (h *TitleHandler) Get(c *gin.Context) {
	titleID, err := strconv.ParseInt(c.Param("title_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid title ID"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.titleService.Get(ctx, titleID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Create handles POST /titles
func (h *TitleHandler) Create(c *gin.Context) {
	var in dto.CreateTitleDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.titleService.Create(ctx, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Update handles PATCH /titles/:title_id
func (h *TitleHandler) Update(c *gin.Context) {
	titleID, err := strconv.ParseInt(c.Param("title_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid title ID"})
		return
	}

	var in dto.UpdateTitleDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.titleService.Update(ctx, titleID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete handles DELETE /titles/:title_id
func (h *TitleHandler) Delete(c *gin.Context) {
	titleID, err := strconv.ParseInt(c.Param("title_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid title ID"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.titleService.Delete(ctx, titleID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
