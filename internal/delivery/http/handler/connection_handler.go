package handler

import (
	"net/http"

	"github.com/gdugdh24/tapcard-backend/internal/usecase/connection"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ConnectionHandler struct {
	connectionUseCase *connection.ConnectionUseCase
	log               *zap.Logger
}

func NewConnectionHandler(connectionUseCase *connection.ConnectionUseCase, log *zap.Logger) *ConnectionHandler {
	return &ConnectionHandler{
		connectionUseCase: connectionUseCase,
		log:               log,
	}
}

// List handles GET /connections
// @Summary List connections
// @Tags connections
// @Security BearerAuth
// @Produce json
// @Param method query string false "NFC or QR"
// @Param q query string false "Search name, email, event"
// @Param sort query string false "newest, oldest or name"
// @Success 200 {array} domain.Connection
// @Router /connections [get]
func (h *ConnectionHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var filter connection.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query"})
		return
	}

	conns, err := h.connectionUseCase.List(c.Request.Context(), userID, filter)
	if err != nil {
		respondError(c, h.log, err, "failed to list connections")
		return
	}

	c.JSON(http.StatusOK, conns)
}

// Get handles GET /connections/:id
func (h *ConnectionHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	conn, err := h.connectionUseCase.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err, "failed to get connection")
		return
	}

	c.JSON(http.StatusOK, conn)
}

// UpdateNotes handles PATCH /connections/:id/notes
func (h *ConnectionHandler) UpdateNotes(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req connection.UpdateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	conn, err := h.connectionUseCase.UpdateNotes(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		respondError(c, h.log, err, "failed to update notes")
		return
	}

	c.JSON(http.StatusOK, conn)
}

// UpdateEvent handles PATCH /connections/:id/event
func (h *ConnectionHandler) UpdateEvent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req connection.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	conn, err := h.connectionUseCase.UpdateEvent(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		respondError(c, h.log, err, "failed to update event")
		return
	}

	c.JSON(http.StatusOK, conn)
}

// Refresh handles POST /connections/:id/refresh
// @Summary Refresh contact details
// @Description Replace the stored copy of the contact's details with their current profile
// @Tags connections
// @Security BearerAuth
// @Produce json
// @Param id path string true "Connection ID"
// @Success 200 {object} domain.Connection
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /connections/{id}/refresh [post]
func (h *ConnectionHandler) Refresh(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	conn, err := h.connectionUseCase.RefreshSnapshot(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err, "failed to refresh connection")
		return
	}

	c.JSON(http.StatusOK, conn)
}

// Delete handles DELETE /connections/:id
func (h *ConnectionHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.connectionUseCase.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, h.log, err, "failed to delete connection")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "connection deleted"})
}
