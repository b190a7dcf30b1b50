package handlers

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/computer-agent/backend/internal/ws"
)

// WebSocketHandler attaches WebSocket clients to sessions.
type WebSocketHandler struct {
	handler *ws.Handler
}

// NewWebSocketHandler creates a new WebSocketHandler.
func NewWebSocketHandler(handler *ws.Handler) *WebSocketHandler {
	return &WebSocketHandler{handler: handler}
}

// Attach handles GET /api/sessions/:id/attach - upgrades to a WebSocket and
// attaches the client to the session's event stream.
func (h *WebSocketHandler) Attach(c *gin.Context) {
	sessionID := c.Param("id")

	if err := h.handler.HandleConnection(c.Writer, c.Request, sessionID); err != nil {
		// HandleConnection has already written the HTTP response
		log.Printf("WebSocket attach failed for session %s: %v", sessionID, err)
	}
}

// RegisterRoutes registers the WebSocket routes on a Gin router group.
func (h *WebSocketHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/sessions/:id/attach", h.Attach)
}
