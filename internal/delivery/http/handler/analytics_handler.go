package handler

import (
	"net/http"
	"time"

	"github.com/gdugdh24/tapcard-backend/internal/usecase/analytics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AnalyticsHandler struct {
	analyticsUseCase *analytics.AnalyticsUseCase
	log              *zap.Logger
}

func NewAnalyticsHandler(analyticsUseCase *analytics.AnalyticsUseCase, log *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsUseCase: analyticsUseCase,
		log:              log,
	}
}

// Dashboard handles GET /analytics
// @Summary Connection statistics
// @Tags analytics
// @Security BearerAuth
// @Produce json
// @Param tz query string false "IANA time zone for period boundaries, default UTC"
// @Success 200 {object} analytics.Summary
// @Failure 400 {object} ErrorResponse
// @Router /analytics [get]
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	loc := time.UTC
	if tz := c.Query("tz"); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unknown time zone"})
			return
		}
		loc = l
	}

	summary, err := h.analyticsUseCase.Dashboard(c.Request.Context(), userID, loc)
	if err != nil {
		respondError(c, h.log, err, "failed to compute analytics")
		return
	}

	c.JSON(http.StatusOK, summary)
}
