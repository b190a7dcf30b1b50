package ws

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/computer-agent/backend/internal/hub"
	"github.com/computer-agent/backend/internal/model"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 65536
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// inboundMessage is what a connected client may send: a user message to
// submit on the session it is attached to.
type inboundMessage struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Handler attaches WebSocket clients to hub sessions.
type Handler struct {
	hub *hub.Hub
}

// NewHandler creates a new WebSocket handler.
func NewHandler(h *hub.Hub) *Handler {
	return &Handler{hub: h}
}

// HandleConnection upgrades the request, subscribes the client to the
// session and starts the read and write pumps. The client receives every
// event broadcast on the session until either side disconnects.
func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request, sessionID string) error {
	if !h.hub.Exists(sessionID) {
		http.Error(w, "Session not found", http.StatusNotFound)
		return model.ErrSessionNotFound
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := NewClient(conn)
	if err := h.hub.Subscribe(sessionID, client); err != nil {
		conn.Close()
		return err
	}

	go h.writePump(client)
	go h.readPump(client, sessionID)

	return nil
}

// readPump reads messages from the client and submits them to the session.
func (h *Handler) readPump(client *Client, sessionID string) {
	defer func() {
		h.hub.Unsubscribe(sessionID, client)
		client.Close()
		client.Conn().Close()
	}()

	client.Conn().SetReadLimit(maxMessageSize)
	client.Conn().SetReadDeadline(time.Now().Add(pongWait))
	client.Conn().SetPongHandler(func(string) error {
		client.Conn().SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := client.Conn().ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Printf("Failed to unmarshal message: %v", err)
			continue
		}

		if msg.Type != "message" || msg.Content == "" {
			continue
		}

		if err := h.hub.Submit(sessionID, msg.Content); err != nil {
			if errors.Is(err, model.ErrSessionNotFound) {
				// Session was removed while this client was attached.
				break
			}
			client.Send(model.ErrorEvent(err.Error(), ""))
		}
	}
}

// writePump drains the client's send buffer to the connection and keeps the
// connection alive with pings.
func (h *Handler) writePump(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn().Close()
	}()

	for {
		select {
		case data, ok := <-client.SendChan():
			client.Conn().SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the client
				client.Conn().WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// One event per frame so clients can parse each message alone
			if err := client.Conn().WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

			n := len(client.SendChan())
			for i := 0; i < n; i++ {
				queued, ok := <-client.SendChan()
				if !ok {
					client.Conn().WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				client.Conn().SetWriteDeadline(time.Now().Add(writeWait))
				if err := client.Conn().WriteMessage(websocket.TextMessage, queued); err != nil {
					return
				}
			}
		case <-ticker.C:
			client.Conn().SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn().WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
