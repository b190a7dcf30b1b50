package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/computer-agent/backend/internal/vncproxy"
)

// DesktopHandler exposes the desktop's VNC endpoints: connection metadata
// for browser clients and the WebSocket relay to the VNC server.
type DesktopHandler struct {
	proxy *vncproxy.Proxy
}

// NewDesktopHandler creates a new DesktopHandler.
func NewDesktopHandler(proxy *vncproxy.Proxy) *DesktopHandler {
	return &DesktopHandler{proxy: proxy}
}

// Info handles GET /api/desktop/info - returns how to reach the desktop.
func (h *DesktopHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, h.proxy.ConnectionInfo())
}

// Stream handles GET /api/desktop/stream - relays the connection to the VNC
// server until either side closes.
func (h *DesktopHandler) Stream(c *gin.Context) {
	if err := h.proxy.HandleWebSocket(c.Writer, c.Request); err != nil {
		log.Printf("Desktop stream ended: %v", err)
	}
}

// RegisterRoutes registers the desktop routes on a Gin router group.
func (h *DesktopHandler) RegisterRoutes(rg *gin.RouterGroup) {
	desktop := rg.Group("/desktop")
	{
		desktop.GET("/info", h.Info)
		desktop.GET("/stream", h.Stream)
	}
}
