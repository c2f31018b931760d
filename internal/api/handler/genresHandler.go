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

type GenreHandler struct {
	genreService service.GenreService
}

func NewGenreHandler(genreService service.GenreService) *GenreHandler {
	return &GenreHandler{genreService: genreService}
}

// RegisterRoutes registers genre routes. Reads are public, writes are
// admin only.
func (h *GenreHandler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	genres := rg.Group("/genres")
	{
		genres.GET("", h.List)
		genres.GET("/:slug", h.Get)

		genres.POST("", authMW, middleware.RequireAdmin(), h.Create)
		genres.PATCH("/:slug", authMW, middleware.RequireAdmin(), h.Update)
		genres.DELETE("/:slug", authMW, middleware.RequireAdmin(), h.Delete)
	}
}

// List handles GET /genres?page=1&page_size=20
func (h *GenreHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	page, pageSize := parsePagination(c)

	resp, err := h.genreService.List(ctx, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get handles GET /genres/:slug
func (h *GenreHandler) Get(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.genreService.Get(ctx, c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Create handles POST /genres
func (h *GenreHandler) Create(c *gin.Context) {
	var in dto.CreateGenreDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.genreService.Create(ctx, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Update handles PATCH /genres/:slug
func (h *GenreHandler) Update(c *gin.Context) {
	var in dto.UpdateGenreDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.genreService.UpdateName(ctx, c.Param("slug"), in.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete handles DELETE /genres/:slug
func (h *GenreHandler) Delete(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.genreService.Delete(ctx, c.Param("slug")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
