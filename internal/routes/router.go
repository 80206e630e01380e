package routes

import (
	"net/http"

	"marketplace-auth/internal/config"
	"marketplace-auth/internal/database"
	"marketplace-auth/internal/logger"
	"marketplace-auth/internal/middleware"
	"marketplace-auth/internal/token"
	"marketplace-auth/internal/user/handler"
	"marketplace-auth/internal/user/repository"
	"marketplace-auth/internal/user/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(cfg *config.Config, db *database.Database) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware order: recovery, request ID, logging, security headers,
	// CORS, request size limit. The rate limiter is applied to the auth
	// group only.
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	router.Use(middleware.RequestSizeLimitMiddleware(middleware.DefaultMaxRequestSize))

	router.GET("/health", func(c *gin.Context) {
		if err := db.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"message": "Database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Service is running",
		})
	})

	tokenService := token.NewService(cfg.JWT)
	userRepository := repository.NewRepository(db)
	userService := service.NewService(userRepository, tokenService)
	userHandler := handler.NewHandler(userService)

	auth := router.Group("/api/auth")
	auth.Use(middleware.RateLimitMiddleware(cfg.RateLimit.AuthRPS, cfg.RateLimit.AuthBurst))
	{
		userHandler.RegisterRoutes(auth)

		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(tokenService))
		{
			userHandler.RegisterProfileRoutes(protected)
		}
	}

	logger.Info("All routes initialized")
	return router
}
