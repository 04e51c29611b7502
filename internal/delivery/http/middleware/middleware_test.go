package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gdugdh24/tapcard-backend/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubVerifier map[string]error

func (s stubVerifier) VerifyToken(ctx context.Context, token string) (string, error) {
	if err, ok := s[token]; ok {
		return "", err
	}
	return "user-" + token, nil
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(UserIDKey))
	})
	r.GET("/", handlers...)
	return r
}

func get(r http.Handler, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	m := NewAuthMiddleware(stubVerifier{
		"expired": domain.ErrSessionExpired,
		"bad":     domain.ErrInvalidToken,
	})
	r := newEngine(m.RequireAuth())

	w := get(r, "/", "abc")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-abc", w.Body.String())

	w = get(r, "/?token=q", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-q", w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, get(r, "/", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/", "bad").Code)

	w = get(r, "/", "expired")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "session expired")
}

func TestRateLimiter_PerUser(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	setUser := func(c *gin.Context) {
		c.Set(UserIDKey, c.Query("u"))
		c.Next()
	}
	r := newEngine(setUser, rl.Middleware())

	assert.Equal(t, http.StatusOK, get(r, "/?u=a", "").Code)
	assert.Equal(t, http.StatusOK, get(r, "/?u=a", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, "/?u=a", "").Code)
	assert.Equal(t, http.StatusOK, get(r, "/?u=b", "").Code)
}

func TestRequestLogger_PassesThrough(t *testing.T) {
	r := newEngine(RequestLogger(zap.NewNop()))
	assert.Equal(t, http.StatusOK, get(r, "/", "").Code)
}
