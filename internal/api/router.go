package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fieldcast/tourplan-backend-go/internal/config"
	"github.com/fieldcast/tourplan-backend-go/internal/handler"
	"github.com/fieldcast/tourplan-backend-go/internal/middleware"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth      *handler.AuthHandler
	Plan      *handler.PlanHandler
	Geocoding *handler.GeocodingHandler
}

// SetupRouter wires middleware and routes.
func SetupRouter(cfg *config.Config, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.RateLimit(120, time.Minute))

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Tourplan Backend API is running",
		})
	})

	api := r.Group("/api/v1")
	{
		api.POST("/auth/token", h.Auth.Token)

		protected := api.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			protected.POST("/plan/week", h.Plan.PlanWeek)
			protected.POST("/geocode", h.Geocoding.Resolve)
			protected.GET("/geocode/cache/stats", h.Geocoding.CacheStats)
		}
	}

	return r
}
