package handler

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"github.com/fieldcast/tourplan-backend-go/internal/middleware"
	"github.com/fieldcast/tourplan-backend-go/pkg/response"
)

// AuthHandler exchanges the shared API key for a JWT
type AuthHandler struct {
	apiKey    string
	jwtSecret string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(apiKey, jwtSecret string) *AuthHandler {
	return &AuthHandler{apiKey: apiKey, jwtSecret: jwtSecret}
}

type tokenRequest struct {
	APIKey string `json:"api_key" binding:"required"`
}

// Token issues a 24h access token
// POST /api/v1/auth/token
func (h *AuthHandler) Token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "api_key is required")
		return
	}

	if h.apiKey == "" || subtle.ConstantTimeCompare([]byte(req.APIKey), []byte(h.apiKey)) != 1 {
		response.Unauthorized(c, "Invalid API key")
		return
	}

	token, err := middleware.IssueToken(h.jwtSecret, "api-client")
	if err != nil {
		response.InternalError(c, "Failed to issue token")
		return
	}

	response.Success(c, gin.H{"token": token, "expires_in": int(middleware.TokenTTL.Seconds())})
}
