package handler

import (
	"context"
	"net/http"
	"time"

	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRoutes registers the self-service signup flow. Both endpoints are
// anonymous and sit behind the rate limiter.
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup, rateLimitMW gin.HandlerFunc) {
	auth := rg.Group("/auth", rateLimitMW)
	{
		auth.POST("/signup", h.Signup)
		auth.POST("/token", h.Token)
	}
}

// Signup handles POST /auth/signup. Issues a confirmation code for the
// (username, email) pair; repeating the same pair re-issues a fresh code.
func (h *AuthHandler) Signup(c *gin.Context) {
	var in dto.SignupDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.authService.Signup(ctx, in.Username, in.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"username": in.Username, "email": in.Email})
}

// Token handles POST /auth/token, exchanging a confirmation code for a JWT.
func (h *AuthHandler) Token(c *gin.Context) {
	var in dto.TokenDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	token, err := h.authService.IssueToken(ctx, in.Username, in.ConfirmationCode)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TokenResponse{Token: token})
}
