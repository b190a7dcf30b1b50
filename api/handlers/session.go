// Package handlers provides HTTP API request handlers.
package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/computer-agent/backend/internal/hub"
	"github.com/computer-agent/backend/internal/model"
	"github.com/computer-agent/backend/internal/repository"
)

// SessionHandler handles HTTP requests for session and message management.
type SessionHandler struct {
	sessions *repository.SessionRepository
	messages *repository.MessageRepository
	hub      *hub.Hub
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions *repository.SessionRepository, messages *repository.MessageRepository, h *hub.Hub) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		messages: messages,
		hub:      h,
	}
}

// SessionResponse represents a session in API responses.
type SessionResponse struct {
	ID                 string `json:"id"`
	Model              string `json:"model"`
	Provider           string `json:"provider"`
	SystemPromptSuffix string `json:"system_prompt_suffix,omitempty"`
	CreatedAt          string `json:"createdAt"`
	UpdatedAt          string `json:"updatedAt"`
}

// MessageResponse represents a stored message in API responses.
type MessageResponse struct {
	ID        string               `json:"id"`
	SessionID string               `json:"sessionId"`
	Role      string               `json:"role"`
	Content   []model.ContentBlock `json:"content"`
	CreatedAt string               `json:"createdAt"`
}

// SendMessageRequest is the body for submitting a user message.
type SendMessageRequest struct {
	Content string `json:"content"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func toSessionResponse(s *model.Session) *SessionResponse {
	return &SessionResponse{
		ID:                 s.ID,
		Model:              s.Model,
		Provider:           s.Provider,
		SystemPromptSuffix: s.SystemPromptSuffix,
		CreatedAt:          s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          s.UpdatedAt.Format(time.RFC3339),
	}
}

func toMessageResponse(m *model.Message) *MessageResponse {
	return &MessageResponse{
		ID:        m.ID,
		SessionID: m.SessionID,
		Role:      string(m.Role),
		Content:   m.Content,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
}

// sendError sends an error response with the appropriate status code.
func sendError(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

func pagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "100"))
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}

// Create handles POST /api/sessions - creates a new session.
func (h *SessionHandler) Create(c *gin.Context) {
	var req model.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body: "+err.Error())
		return
	}

	if err := req.Validate(); err != nil {
		sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	now := time.Now()
	sess := &model.Session{
		ID:                 uuid.New().String(),
		Model:              req.Model,
		Provider:           req.Provider,
		SystemPromptSuffix: req.SystemPromptSuffix,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := h.sessions.Create(c.Request.Context(), sess); err != nil {
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create session: "+err.Error())
		return
	}

	if err := h.hub.Create(sess.ID, sess.Model, sess.Provider, sess.SystemPromptSuffix); err != nil {
		// Rollback: a persisted session with no worker is unreachable
		h.sessions.Delete(c.Request.Context(), sess.ID)
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to start session: "+err.Error())
		return
	}

	c.JSON(http.StatusCreated, toSessionResponse(sess))
}

// List handles GET /api/sessions - lists sessions, newest first.
func (h *SessionHandler) List(c *gin.Context) {
	offset, limit := pagination(c)

	sessions, err := h.sessions.List(c.Request.Context(), offset, limit)
	if err != nil {
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list sessions: "+err.Error())
		return
	}

	response := make([]*SessionResponse, len(sessions))
	for i, sess := range sessions {
		response[i] = toSessionResponse(sess)
	}

	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/sessions/:id - gets a specific session.
func (h *SessionHandler) Get(c *gin.Context) {
	sessionID := c.Param("id")

	sess, err := h.sessions.GetByID(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			sendError(c, http.StatusNotFound, "SESSION_NOT_FOUND", "Session "+sessionID+" not found")
			return
		}
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get session: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, toSessionResponse(sess))
}

// Delete handles DELETE /api/sessions/:id - deletes a session.
func (h *SessionHandler) Delete(c *gin.Context) {
	sessionID := c.Param("id")

	if err := h.sessions.Delete(c.Request.Context(), sessionID); err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			sendError(c, http.StatusNotFound, "SESSION_NOT_FOUND", "Session "+sessionID+" not found")
			return
		}
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete session: "+err.Error())
		return
	}

	h.hub.Remove(sessionID)

	c.Status(http.StatusNoContent)
}

// ListMessages handles GET /api/sessions/:id/messages.
func (h *SessionHandler) ListMessages(c *gin.Context) {
	sessionID := c.Param("id")
	offset, limit := pagination(c)

	messages, err := h.messages.ListBySession(c.Request.Context(), sessionID, offset, limit)
	if err != nil {
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list messages: "+err.Error())
		return
	}

	response := make([]*MessageResponse, len(messages))
	for i, msg := range messages {
		response[i] = toMessageResponse(msg)
	}

	c.JSON(http.StatusOK, response)
}

// SendMessage handles POST /api/sessions/:id/messages - stores a user
// message and queues it for processing. It returns immediately; progress is
// streamed over the WebSocket and SSE endpoints.
func (h *SessionHandler) SendMessage(c *gin.Context) {
	sessionID := c.Param("id")

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body: "+err.Error())
		return
	}
	if req.Content == "" {
		sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", model.ErrContentRequired.Error())
		return
	}

	exists, err := h.sessions.Exists(c.Request.Context(), sessionID)
	if err != nil {
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to check session: "+err.Error())
		return
	}
	if !exists {
		sendError(c, http.StatusNotFound, "SESSION_NOT_FOUND", "Session "+sessionID+" not found")
		return
	}

	message := &model.Message{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Role:      model.RoleUser,
		Content:   []model.ContentBlock{model.TextBlock(req.Content)},
		CreatedAt: time.Now(),
	}

	if err := h.messages.Create(c.Request.Context(), message); err != nil {
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to store message: "+err.Error())
		return
	}

	if err := h.hub.Submit(sessionID, req.Content); err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			sendError(c, http.StatusNotFound, "SESSION_NOT_FOUND", "Session "+sessionID+" has no active worker")
			return
		}
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to queue message: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message_id": message.ID,
		"session_id": sessionID,
		"status":     "queued",
	})
}

// Stream handles GET /api/sessions/:id/stream - Server-Sent Events delivery
// of session progress, the one-directional alternative to the WebSocket.
func (h *SessionHandler) Stream(c *gin.Context) {
	sessionID := c.Param("id")

	sub := hub.NewQueueSubscriber(0)
	if err := h.hub.Subscribe(sessionID, sub); err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			sendError(c, http.StatusNotFound, "SESSION_NOT_FOUND", "Session "+sessionID+" not found")
			return
		}
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to subscribe: "+err.Error())
		return
	}
	defer h.hub.Unsubscribe(sessionID, sub)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				return false
			}
			c.SSEvent("message", ev)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// RegisterRoutes registers the session handler routes on a Gin router group.
func (h *SessionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sessions := rg.Group("/sessions")
	{
		sessions.POST("", h.Create)
		sessions.GET("", h.List)
		sessions.GET("/:id", h.Get)
		sessions.DELETE("/:id", h.Delete)
		sessions.GET("/:id/messages", h.ListMessages)
		sessions.POST("/:id/messages", h.SendMessage)
		sessions.GET("/:id/stream", h.Stream)
	}
}
