package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"

	"reviewhub/database"
	"reviewhub/internal/api/handler"
	"reviewhub/internal/api/middleware"
	"reviewhub/internal/api/repository"
	"reviewhub/internal/api/service"
	"reviewhub/internal/config"
)

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	confirmationRepo, err := repository.NewConfirmationRepository(cfg.RedisURL, cfg.RedisPassword)
	if err != nil {
		logger.Error("redis connection failed", "error", err)
		os.Exit(1)
	}

	categoryRepo := repository.NewCategoryRepository(db)
	genreRepo := repository.NewGenreRepository(db)
	titleRepo := repository.NewTitleRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	userRepo := repository.NewUserRepository(db)

	limits := &service.Limits{
		Username: cfg.LimitUsername,
		Email:    cfg.LimitEmail,
		Name:     cfg.LimitName,
		Slug:     cfg.LimitSlug,
		Code:     cfg.LimitCode,
	}

	categoryService := service.NewCategoryService(categoryRepo, limits)
	genreService := service.NewGenreService(genreRepo, limits)
	titleService := service.NewTitleService(titleRepo, categoryRepo, genreRepo, reviewRepo, limits)
	reviewService := service.NewReviewService(reviewRepo, titleRepo)
	commentService := service.NewCommentService(commentRepo, reviewRepo)
	authService := service.NewAuthService(userRepo, confirmationRepo, limits, logger, cfg)
	userService := service.NewUserService(userRepo, limits)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	authMW := middleware.AuthMiddleware(authService)
	rateLimitMW := middleware.RateLimit(cfg.AuthRatePerSecond, cfg.AuthRateBurst)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.OptionalAuth(authService))

	handler.NewAuthHandler(authService).RegisterRoutes(v1, rateLimitMW)
	handler.NewCategoryHandler(categoryService).RegisterRoutes(v1, authMW)
	handler.NewGenreHandler(genreService).RegisterRoutes(v1, authMW)
	handler.NewTitleHandler(titleService).RegisterRoutes(v1, authMW)
	handler.NewReviewHandler(reviewService).RegisterRoutes(v1, authMW)
	handler.NewCommentHandler(commentService).RegisterRoutes(v1, authMW)
	handler.NewUserHandler(userService).RegisterRoutes(v1, authMW)

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	logger.Info("starting api server", "addr", addr, "env", cfg.GoEnv)
	if err := r.Run(addr); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
