package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gdugdh24/tapcard-backend/internal/config"
	"github.com/gdugdh24/tapcard-backend/internal/infrastructure/container"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testApp struct {
	t      *testing.T
	router *gin.Engine
	mr     *miniredis.Miniredis
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{
		Storage:  config.StorageConfig{Type: config.StorageMemory, ProfileCacheTTL: time.Minute},
		JWT:      config.JWTConfig{AccessSecret: "test-secret", AccessExpiryMin: 60},
		Exchange: config.ExchangeConfig{Scheme: "tapcard", Host: "connect", AppID: "com.tapcard.app"},
		FollowUp: config.FollowUpConfig{
			PollInterval: time.Second,
			BatchSize:    10,
			MaxAttempts:  3,
			RetryDelay:   time.Second,
			KeyPrefix:    "test:jobs",
		},
		RateLimit: config.RateLimitConfig{ExchangeRPS: 100, ExchangeBurst: 100},
	}

	app := container.Assemble(cfg, zap.NewNop(), container.MemoryRepositories(), rdb, nil)
	return &testApp{t: t, router: app.Router, mr: mr}
}

func (a *testApp) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (a *testApp) register(email, name string) (token, userID string) {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":     email,
		"password":  "correct-horse",
		"full_name": name,
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	decode(a.t, w, &resp)
	return resp.Token, resp.User.ID
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	w := app.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "/api/v1/connections", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(http.MethodGet, "/api/v1/connections", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterTwiceConflicts(t *testing.T) {
	app := newTestApp(t)
	app.register("alice@example.com", "Alice")

	w := app.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":     "alice@example.com",
		"password":  "correct-horse",
		"full_name": "Alice",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestExchangeFlow(t *testing.T) {
	app := newTestApp(t)
	aliceToken, aliceID := app.register("alice@example.com", "Alice")
	bobToken, bobID := app.register("bob@example.com", "Bob")

	w := app.do(http.MethodGet, "/api/v1/profile/me/share", bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var share struct {
		URI        string `json:"uri"`
		NFCPayload string `json:"nfc_payload"`
	}
	decode(t, w, &share)
	assert.Contains(t, share.URI, "tapcard://connect?data=")

	w = app.do(http.MethodPost, "/api/v1/exchange/preview", aliceToken, map[string]string{"payload": share.URI})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var preview struct {
		Profile struct {
			ID       string `json:"id"`
			FullName string `json:"full_name"`
		} `json:"profile"`
		AlreadyConnected bool `json:"already_connected"`
		IsSelf           bool `json:"is_self"`
	}
	decode(t, w, &preview)
	assert.Equal(t, bobID, preview.Profile.ID)
	assert.Equal(t, "Bob", preview.Profile.FullName)
	assert.False(t, preview.AlreadyConnected)
	assert.False(t, preview.IsSelf)

	confirm := map[string]interface{}{
		"payload":        share.NFCPayload,
		"method":         "NFC",
		"event_name":     "GopherCon",
		"event_location": "Berlin",
	}
	w = app.do(http.MethodPost, "/api/v1/exchange/confirm", aliceToken, confirm)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var conn struct {
		ID              string `json:"id"`
		UserID          string `json:"user_id"`
		ConnectedUserID string `json:"connected_user_id"`
		Name            string `json:"connected_user_name"`
	}
	decode(t, w, &conn)
	assert.Equal(t, aliceID, conn.UserID)
	assert.Equal(t, bobID, conn.ConnectedUserID)
	assert.Equal(t, "Bob", conn.Name)

	// duplicate
	w = app.do(http.MethodPost, "/api/v1/exchange/confirm", aliceToken, confirm)
	assert.Equal(t, http.StatusConflict, w.Code)

	// the counterpart gets the reverse record and an alert
	var bobConns []map[string]interface{}
	w = app.do(http.MethodGet, "/api/v1/connections", bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &bobConns)
	require.Len(t, bobConns, 1)
	assert.Equal(t, aliceID, bobConns[0]["connected_user_id"])

	var inbox []map[string]interface{}
	w = app.do(http.MethodGet, "/api/v1/notifications", bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &inbox)
	require.Len(t, inbox, 1)
	assert.Equal(t, "new_connection", inbox[0]["kind"])

	// both sides have a follow-up queued
	due, err := app.mr.ZMembers("test:jobs:due")
	require.NoError(t, err)
	assert.Len(t, due, 2)

	// bob cannot read alice's record
	w = app.do(http.MethodGet, "/api/v1/connections/"+conn.ID, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(http.MethodGet, "/api/v1/analytics", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary struct {
		TotalConnections int `json:"total_connections"`
	}
	decode(t, w, &summary)
	assert.Equal(t, 1, summary.TotalConnections)

	w = app.do(http.MethodDelete, "/api/v1/connections/"+conn.ID, aliceToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = app.do(http.MethodGet, "/api/v1/connections/"+conn.ID, aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	due, err = app.mr.ZMembers("test:jobs:due")
	require.NoError(t, err)
	assert.Len(t, due, 1)
}

func TestExchangeRejectsForeignPayload(t *testing.T) {
	app := newTestApp(t)
	token, _ := app.register("alice@example.com", "Alice")

	w := app.do(http.MethodPost, "/api/v1/exchange/preview", token, map[string]string{
		"payload": `{"app":"com.other.app","id":"x"}`,
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var resp struct {
		Reason string `json:"reason"`
	}
	decode(t, w, &resp)
	assert.Equal(t, "foreign_payload", resp.Reason)
}

func TestExchangeRejectsSelf(t *testing.T) {
	app := newTestApp(t)
	token, _ := app.register("alice@example.com", "Alice")

	w := app.do(http.MethodGet, "/api/v1/profile/me/share", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var share struct {
		URI string `json:"uri"`
	}
	decode(t, w, &share)

	w = app.do(http.MethodPost, "/api/v1/exchange/confirm", token, map[string]string{
		"payload": share.URI,
		"method":  "QR",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSettingsValidation(t *testing.T) {
	app := newTestApp(t)
	token, _ := app.register("alice@example.com", "Alice")

	w := app.do(http.MethodPut, "/api/v1/settings", token, map[string]interface{}{
		"follow_up_unit": "weeks",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(http.MethodPut, "/api/v1/settings", token, map[string]interface{}{
		"follow_up_value": 2,
		"follow_up_unit":  "months",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var s struct {
		FollowUpValue int    `json:"follow_up_value"`
		FollowUpUnit  string `json:"follow_up_unit"`
	}
	decode(t, w, &s)
	assert.Equal(t, 2, s.FollowUpValue)
	assert.Equal(t, "months", s.FollowUpUnit)
}
