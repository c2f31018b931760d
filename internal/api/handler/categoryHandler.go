package handler

import (
	"context"
	"net/http"
	"time"

	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/middleware"
	"reviewhub/internal/api/service"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	categoryService service.CategoryService
}

func NewCategoryHandler(categoryService service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// RegisterRoutes registers category routes. Reads are public, writes are
// admin only.
func (h *CategoryHandler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	categories := rg.Group("/categories")
	{
		categories.GET("", h.List)
		categories.GET("/:slug", h.Get)

		categories.POST("", authMW, middleware.RequireAdmin(), h.Create)
		categories.PATCH("/:slug", authMW, middleware.RequireAdmin(), h.Update)
		categories.DELETE("/:slug", authMW, middleware.RequireAdmin(), h.Delete)
	}
}

// List handles GET /categories?page=1&page_size=20
func (h *CategoryHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	page, pageSize := parsePagination(c)

	resp, err := h.categoryService.List(ctx, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get handles GET /categories/:slug
func (h *CategoryHandler) Get(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.categoryService.Get(ctx, c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Create handles POST /categories
func (h *CategoryHandler) Create(c *gin.Context) {
	var in dto.CreateCategoryDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.categoryService.Create(ctx, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Update handles PATCH /categories/:slug
func (h *CategoryHandler) Update(c *gin.Context) {
	var in dto.UpdateCategoryDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.categoryService.UpdateName(ctx, c.Param("slug"), in.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete handles DELETE /categories/:slug
func (h *CategoryHandler) Delete(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.categoryService.Delete(ctx, c.Param("slug")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
