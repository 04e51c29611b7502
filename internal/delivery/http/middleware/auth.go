package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gdugdh24/tapcard-backend/internal/domain"
	"github.com/gin-gonic/gin"
)

// UserIDKey is the gin context key holding the authenticated user id.
const UserIDKey = "user_id"

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
}

func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// BearerToken extracts the token from the Authorization header. Websocket
// clients that cannot set headers may pass ?token= instead.
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(header[len("Bearer "):])
	}
	if header != "" {
		return strings.TrimSpace(header)
	}
	return c.Query("token")
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization token"})
			return
		}

		userID, err := m.verifier.VerifyToken(c.Request.Context(), token)
		if err != nil {
			message := "invalid token"
			switch {
			case errors.Is(err, domain.ErrSessionExpired):
				message = "session expired"
			case errors.Is(err, domain.ErrSessionNotFound):
				message = "session not found"
			case errors.Is(err, domain.ErrInvalidToken):
			default:
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to verify token"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}
