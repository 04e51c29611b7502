package handler

import (
	"net/http"

	"github.com/gdugdh24/tapcard-backend/internal/usecase/profile"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProfileHandler struct {
	profileUseCase *profile.ProfileUseCase
	log            *zap.Logger
}

func NewProfileHandler(profileUseCase *profile.ProfileUseCase, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileUseCase: profileUseCase,
		log:            log,
	}
}

// GetMyProfile handles GET /profile/me
// @Summary Get my profile
// @Tags profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} domain.Profile
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /profile/me [get]
func (h *ProfileHandler) GetMyProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	p, err := h.profileUseCase.GetMyProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err, "failed to get profile")
		return
	}

	c.JSON(http.StatusOK, p)
}

// CreateMyProfile handles POST /profile/me
// @Summary Create my profile
// @Tags profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body profile.CreateProfileRequest true "Profile data"
// @Success 201 {object} domain.Profile
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /profile/me [post]
func (h *ProfileHandler) CreateMyProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req profile.CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	p, err := h.profileUseCase.CreateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.log, err, "failed to create profile")
		return
	}

	c.JSON(http.StatusCreated, p)
}

// UpdateMyProfile handles PUT /profile/me
// @Summary Update my profile
// @Tags profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body profile.UpdateProfileRequest true "Profile update data"
// @Success 200 {object} domain.Profile
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /profile/me [put]
func (h *ProfileHandler) UpdateMyProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req profile.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	p, err := h.profileUseCase.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.log, err, "failed to update profile")
		return
	}

	c.JSON(http.StatusOK, p)
}

// Share handles GET /profile/me/share
// @Summary Exchange payloads
// @Description QR deep link and NFC JSON for the current profile
// @Tags profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} profile.SharePayload
// @Failure 404 {object} ErrorResponse
// @Router /profile/me/share [get]
func (h *ProfileHandler) Share(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	payload, err := h.profileUseCase.Share(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err, "failed to encode profile")
		return
	}

	c.JSON(http.StatusOK, payload)
}

// SuggestBio handles POST /profile/suggest-bio
// @Summary Suggest a bio
// @Tags profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]string
// @Router /profile/suggest-bio [post]
func (h *ProfileHandler) SuggestBio(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	bio, err := h.profileUseCase.SuggestBio(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err, "failed to suggest bio")
		return
	}

	c.JSON(http.StatusOK, gin.H{"description": bio})
}

// Platforms handles GET /profile/platforms
func (h *ProfileHandler) Platforms(c *gin.Context) {
	c.JSON(http.StatusOK, h.profileUseCase.Platforms())
}

// GetProfileByUserID handles GET /profile/:user_id
// @Summary Get profile by user ID
// @Tags profile
// @Security BearerAuth
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} domain.Profile
// @Failure 404 {object} ErrorResponse
// @Router /profile/{user_id} [get]
func (h *ProfileHandler) GetProfileByUserID(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	p, err := h.profileUseCase.GetProfile(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		respondError(c, h.log, err, "failed to get profile")
		return
	}

	c.JSON(http.StatusOK, p)
}
