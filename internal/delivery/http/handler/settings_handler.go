package handler

import (
	"net/http"

	"github.com/gdugdh24/tapcard-backend/internal/usecase/settings"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SettingsHandler struct {
	settingsUseCase *settings.SettingsUseCase
	log             *zap.Logger
}

func NewSettingsHandler(settingsUseCase *settings.SettingsUseCase, log *zap.Logger) *SettingsHandler {
	return &SettingsHandler{
		settingsUseCase: settingsUseCase,
		log:             log,
	}
}

// Get handles GET /settings
// @Summary Get settings
// @Tags settings
// @Security BearerAuth
// @Produce json
// @Success 200 {object} domain.UserSettings
// @Router /settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	st, err := h.settingsUseCase.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err, "failed to get settings")
		return
	}

	c.JSON(http.StatusOK, st)
}

// Update handles PUT /settings
// @Summary Update settings
// @Description Partial update. Disabling follow-ups cancels pending reminders.
// @Tags settings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body settings.UpdateSettingsRequest true "Settings"
// @Success 200 {object} domain.UserSettings
// @Failure 400 {object} ErrorResponse
// @Router /settings [put]
func (h *SettingsHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req settings.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	st, err := h.settingsUseCase.Update(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.log, err, "failed to update settings")
		return
	}

	c.JSON(http.StatusOK, st)
}
