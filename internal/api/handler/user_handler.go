package handler

import (
	"context"
	"net/http"
	"time"

	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/middleware"
	"reviewhub/internal/api/models"
	"reviewhub/internal/api/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRoutes registers user management routes. The /users collection is
// admin only; /users/me lets any authenticated caller manage their own
// profile.
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	users := rg.Group("/users", authMW)
	{
		users.GET("/me", h.Me)
		users.PATCH("/me", h.UpdateMe)

		users.GET("", middleware.RequireAdmin(), h.List)
		users.POST("", middleware.RequireAdmin(), h.Create)
		users.GET("/:username", middleware.RequireAdmin(), h.Get)
		users.PATCH("/:username", middleware.RequireAdmin(), h.Update)
		users.DELETE("/:username", middleware.RequireAdmin(), h.Delete)
	}
}

// List handles GET /users
func (h *UserHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	page, pageSize := parsePagination(c)

	resp, err := h.userService.List(ctx, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Create handles POST /users (admin provisioning)
func (h *UserHandler) Create(c *gin.Context) {
	var in dto.CreateUserDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.userService.Create(ctx, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Get handles GET /users/:username
func (h *UserHandler) Get(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.userService.Get(ctx, c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update handles PATCH /users/:username. Admins may change any field,
// including role.
func (h *UserHandler) Update(c *gin.Context) {
	var in dto.UpdateUserDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.userService.Update(ctx, c.Param("username"), in, true)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete handles DELETE /users/:username
func (h *UserHandler) Delete(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.userService.Delete(ctx, c.Param("username")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Me handles GET /users/me
func (h *UserHandler) Me(c *gin.Context) {
	callerID, _, ok := middleware.CallerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.userService.GetByID(ctx, callerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateMe handles PATCH /users/me. Role changes are admin only, so the
// role field is ignored here for everyone below admin.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	callerID, role, ok := middleware.CallerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var in dto.UpdateUserDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.userService.UpdateByID(ctx, callerID, in, role == models.RoleAdmin)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
