package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/orbitchat-ai/demo-platform/internal/engine"
	"github.com/orbitchat-ai/demo-platform/internal/middleware"
	"github.com/orbitchat-ai/demo-platform/internal/model"
	"github.com/orbitchat-ai/demo-platform/pkg/logger"
)

// SessionHandler drives the active chat session through the engine.
type SessionHandler struct {
	engine *engine.Engine
	logger *logger.Logger
}

// NewSessionHandler creates a session handler.
func NewSessionHandler(eng *engine.Engine, log *logger.Logger) *SessionHandler {
	return &SessionHandler{
		engine: eng,
		logger: log,
	}
}

type openSessionRequest struct {
	ChatID string `json:"chat_id,omitempty"`
}

// Open handles POST /api/v1/session. Binding to an unknown or empty
// chat id yields a fresh unbound session rather than an error.
func (h *SessionHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req openSessionRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	if req.ChatID != "" {
		if err := middleware.ValidateChatID(req.ChatID); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	h.engine.Open(r.Context(), req.ChatID)
	writeJSON(w, http.StatusOK, h.engine.Snapshot())
}

// Get handles GET /api/v1/session
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Snapshot())
}

// Close handles DELETE /api/v1/session. Pending simulated work is
// cancelled.
func (h *SessionHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.engine.Close()
	w.WriteHeader(http.StatusNoContent)
}

// Send handles POST /api/v1/session/messages
func (h *SessionHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req model.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateMessageContent(req.Content); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	msg, err := h.engine.Send(r.Context(), req.Content, req.Image)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrReplyPending):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, engine.ErrEmptyMessage),
			errors.Is(err, engine.ErrNotAnImage),
			errors.Is(err, engine.ErrMalformedDataURL):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to send message")
		}
		return
	}

	writeJSON(w, http.StatusAccepted, model.SendMessageResponse{
		ChatID:       h.engine.ChatID(),
		Message:      msg,
		ReplyPending: true,
	})
}

// LoadOlder handles POST /api/v1/session/history. The response blocks
// for the simulated fetch delay and returns the extended timeline.
func (h *SessionHandler) LoadOlder(w http.ResponseWriter, r *http.Request) {
	snap, err := h.engine.LoadOlder(r.Context())
	if err != nil {
		writeError(w, http.StatusRequestTimeout, "history load cancelled")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
