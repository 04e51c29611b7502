package handler

import (
	"net/http"
	"time"

	"github.com/gdugdh24/tapcard-backend/internal/infrastructure/events"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// mobile clients send no Origin; auth is the bearer token
		return true
	},
}

// EventsHandler streams the caller's change events over a websocket.
type EventsHandler struct {
	broker *events.Broker
	log    *zap.Logger
}

func NewEventsHandler(broker *events.Broker, log *zap.Logger) *EventsHandler {
	return &EventsHandler{broker: broker, log: log}
}

// Stream handles GET /events
// @Summary Live updates
// @Description Websocket of profile, settings, connection and notification events
// @Tags events
// @Security BearerAuth
// @Router /events [get]
func (h *EventsHandler) Stream(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		h.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	ch, cancel := h.broker.Subscribe(userID)
	done := make(chan struct{})
	go h.readPump(conn, done)
	h.writePump(conn, ch, done)
	cancel()
}

// readPump discards client messages and notices disconnects.
func (h *EventsHandler) readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(1024)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *EventsHandler) writePump(conn *websocket.Conn, ch <-chan events.Event, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case ev, ok := <-ch:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
