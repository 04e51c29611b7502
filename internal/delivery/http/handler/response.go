package handler

import (
	"errors"
	"net/http"

	"github.com/gdugdh24/tapcard-backend/internal/delivery/http/middleware"
	"github.com/gdugdh24/tapcard-backend/internal/domain"
	"github.com/gdugdh24/tapcard-backend/internal/exchange"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse represents error response
type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

// SuccessResponse represents success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// currentUserID reads the id set by the auth middleware and answers 401
// when it is missing.
func currentUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(middleware.UserIDKey)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return "", false
	}
	return userID, true
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	_ = c.Error(err)
}

var statusByError = []struct {
	err     error
	status  int
	message string
}{
	{domain.ErrInvalidInput, http.StatusBadRequest, "invalid input"},
	{domain.ErrInvalidCoordinates, http.StatusBadRequest, "invalid coordinates"},
	{domain.ErrInvalidMethod, http.StatusBadRequest, "invalid connection method"},
	{domain.ErrInvalidFollowUp, http.StatusBadRequest, "invalid follow-up delay"},
	{domain.ErrCannotConnectSelf, http.StatusBadRequest, "cannot connect with yourself"},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid email or password"},
	{domain.ErrInvalidToken, http.StatusUnauthorized, "invalid token"},
	{domain.ErrSessionNotFound, http.StatusUnauthorized, "session not found"},
	{domain.ErrSessionExpired, http.StatusUnauthorized, "session expired"},
	{domain.ErrForbidden, http.StatusForbidden, "forbidden"},
	{domain.ErrUserNotFound, http.StatusNotFound, "user not found"},
	{domain.ErrProfileNotFound, http.StatusNotFound, "profile not found"},
	{domain.ErrConnectionNotFound, http.StatusNotFound, "connection not found"},
	{domain.ErrNotificationNotFound, http.StatusNotFound, "notification not found"},
	{domain.ErrUserAlreadyExists, http.StatusConflict, "user already exists"},
	{domain.ErrProfileAlreadyExists, http.StatusConflict, "profile already exists"},
	{domain.ErrDuplicateConnection, http.StatusConflict, "already connected"},
}

// respondError maps domain errors to status codes. Anything unknown is a
// storage or infrastructure failure and is logged.
func respondError(c *gin.Context, log *zap.Logger, err error, fallback string) {
	var decodeErr *exchange.DecodeError
	if errors.As(err, &decodeErr) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "unrecognized payload", Reason: string(decodeErr.Reason)})
		return
	}
	for _, m := range statusByError {
		if errors.Is(err, m.err) {
			c.JSON(m.status, ErrorResponse{Error: m.message})
			return
		}
	}
	log.Error(fallback, zap.Error(err), zap.String("path", c.FullPath()))
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: fallback})
}
