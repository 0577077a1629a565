package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/fieldcast/tourplan-backend-go/pkg/response"
)

// TokenTTL is the lifetime of issued access tokens.
const TokenTTL = 24 * time.Hour

// IssueToken creates a signed HS256 token for an authenticated client.
func IssueToken(secret, subject string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Auth middleware validates the Bearer token on protected routes.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "Missing Authorization header")
			c.Abort()
			return
		}

		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			response.Unauthorized(c, "Authorization header must be a Bearer token")
			c.Abort()
			return
		}

		token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			response.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		if claims, ok := token.Claims.(*jwt.RegisteredClaims); ok {
			c.Set("subject", claims.Subject)
		}

		c.Next()
	}
}
