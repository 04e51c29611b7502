package handler

import (
	"net/http"

	"github.com/gdugdh24/tapcard-backend/internal/delivery/http/middleware"
	"github.com/gdugdh24/tapcard-backend/internal/usecase/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authUseCase *auth.AuthUseCase
	log         *zap.Logger
}

func NewAuthHandler(authUseCase *auth.AuthUseCase, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
		log:         log,
	}
}

// AuthResponse is the response structure
type AuthResponse struct {
	Token     string      `json:"token"`
	ExpiresAt int64       `json:"expires_at"`
	User      interface{} `json:"user"`
	IsNewUser bool        `json:"is_new_user"`
}

func toAuthResponse(r *auth.AuthResponse) AuthResponse {
	return AuthResponse{
		Token:     r.Token,
		ExpiresAt: r.ExpiresAt.Unix(),
		User:      r.User,
		IsNewUser: r.IsNewUser,
	}
}

// Register handles account creation
// @Summary Register
// @Description Create an account with an initial profile and default settings
// @Tags auth
// @Accept json
// @Produce json
// @Param request body auth.RegisterRequest true "Credentials"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.authUseCase.Register(c.Request.Context(), &req, c.GetHeader("User-Agent"), c.ClientIP())
	if err != nil {
		respondError(c, h.log, err, "registration failed")
		return
	}

	c.JSON(http.StatusCreated, toAuthResponse(result))
}

// Login handles password authentication
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body auth.LoginRequest true "Credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.authUseCase.Login(c.Request.Context(), &req, c.GetHeader("User-Agent"), c.ClientIP())
	if err != nil {
		respondError(c, h.log, err, "authentication failed")
		return
	}

	c.JSON(http.StatusOK, toAuthResponse(result))
}

// Logout handles user logout
// @Summary Logout
// @Description Logout user, invalidate session and cancel pending follow-ups
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	token := middleware.BearerToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing authorization token"})
		return
	}

	if err := h.authUseCase.Logout(c.Request.Context(), token); err != nil {
		respondError(c, h.log, err, "logout failed")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "logged out successfully"})
}

// Me returns current user info
// @Summary Get current user
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} domain.User
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.authUseCase.Me(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err, "failed to get user")
		return
	}

	c.JSON(http.StatusOK, user)
}
