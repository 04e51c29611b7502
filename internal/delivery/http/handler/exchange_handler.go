package handler

import (
	"net/http"

	"github.com/gdugdh24/tapcard-backend/internal/usecase/connection"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ExchangeHandler accepts payloads scanned from QR codes or read over NFC.
type ExchangeHandler struct {
	connectionUseCase *connection.ConnectionUseCase
	log               *zap.Logger
}

func NewExchangeHandler(connectionUseCase *connection.ConnectionUseCase, log *zap.Logger) *ExchangeHandler {
	return &ExchangeHandler{
		connectionUseCase: connectionUseCase,
		log:               log,
	}
}

// Preview handles POST /exchange/preview
// @Summary Decode a payload
// @Description Shows the sender's profile before the user confirms
// @Tags exchange
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body connection.PreviewRequest true "QR URI or NFC JSON"
// @Success 200 {object} connection.PreviewResponse
// @Failure 422 {object} ErrorResponse
// @Router /exchange/preview [post]
func (h *ExchangeHandler) Preview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req connection.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.connectionUseCase.Preview(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.log, err, "failed to preview payload")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Confirm handles POST /exchange/confirm
// @Summary Save an exchange
// @Tags exchange
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body connection.ConfirmRequest true "Exchange"
// @Success 201 {object} domain.Connection
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /exchange/confirm [post]
func (h *ExchangeHandler) Confirm(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req connection.ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	conn, err := h.connectionUseCase.Confirm(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.log, err, "failed to save connection")
		return
	}

	c.JSON(http.StatusCreated, conn)
}
