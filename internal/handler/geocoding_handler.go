package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fieldcast/tourplan-backend-go/internal/service"
	"github.com/fieldcast/tourplan-backend-go/pkg/response"
)

// GeocodingHandler handles HTTP requests for address resolution
type GeocodingHandler struct {
	service *service.GeocodingService
}

// NewGeocodingHandler creates a new geocoding handler
func NewGeocodingHandler(service *service.GeocodingService) *GeocodingHandler {
	return &GeocodingHandler{service: service}
}

type geocodeRequest struct {
	Address string `json:"address" binding:"required"`
}

// Resolve geocodes a single address
// POST /api/v1/geocode
func (h *GeocodingHandler) Resolve(c *gin.Context) {
	var req geocodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "address is required")
		return
	}

	result, err := h.service.Resolve(c.Request.Context(), req.Address)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	response.Success(c, result)
}

// CacheStats reports cache row counts and provider state
// GET /api/v1/geocode/cache/stats
func (h *GeocodingHandler) CacheStats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, stats)
}
