package handlers

import (
	"net/http"

	"github.com/CircuitDesk/circuitdesk-go/internal/application/services"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/messaging"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/observability/logging"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// StreamHandlers upgrades HTTP connections to the websocket event stream
type StreamHandlers struct {
	broadcaster messaging.Broadcaster
	authService *services.AuthService
	logger      *logging.ChanneledLogger
	upgrader    websocket.Upgrader
}

// NewStreamHandlers creates stream handlers bound to the event broadcaster
func NewStreamHandlers(broadcaster messaging.Broadcaster, authService *services.AuthService, logger *logging.ChanneledLogger) *StreamHandlers {
	return &StreamHandlers{
		broadcaster: broadcaster,
		authService: authService,
		logger:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The CORS middleware already constrains browser origins.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// GetEventStream handles GET /api/v1/events/stream - live mutation events.
// Browser WebSocket clients cannot send an Authorization header, so the token
// arrives as a query parameter and is validated before the upgrade.
func (h *StreamHandlers) GetEventStream(c *gin.Context) {
	principal, err := h.authService.ValidateToken(c.Query("token"))
	if err != nil || principal == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "A valid token query parameter is required"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Events().Error("Websocket upgrade failed", "error", err.Error())
		return
	}

	client := &messaging.Client{
		Conn: conn,
		Send: make(chan []byte, 64),
	}
	h.broadcaster.Register(client)
	h.logger.Events().Info("Event stream client connected", "remoteAddr", conn.RemoteAddr().String())

	// Discard inbound frames so ping/pong and close handshakes are serviced.
	go func() {
		defer h.broadcaster.Unregister(client)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	h.broadcaster.WritePump(client)
}
