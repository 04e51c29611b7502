package handler

import (
	"net/http"
	"strconv"

	"github.com/gdugdh24/tapcard-backend/internal/usecase/notification"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	notificationUseCase *notification.NotificationUseCase
	log                 *zap.Logger
}

func NewNotificationHandler(notificationUseCase *notification.NotificationUseCase, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationUseCase: notificationUseCase,
		log:                 log,
	}
}

// List handles GET /notifications
// @Summary Notification inbox
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} domain.Notification
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, err := h.notificationUseCase.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, h.log, err, "failed to list notifications")
		return
	}

	c.JSON(http.StatusOK, items)
}

// MarkRead handles POST /notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.notificationUseCase.MarkRead(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, h.log, err, "failed to mark notification")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "notification marked as read"})
}
