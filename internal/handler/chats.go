package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/orbitchat-ai/demo-platform/internal/middleware"
	"github.com/orbitchat-ai/demo-platform/internal/model"
	"github.com/orbitchat-ai/demo-platform/internal/store"
	"github.com/orbitchat-ai/demo-platform/pkg/logger"
)

// ChatHandler handles chat collection endpoints.
type ChatHandler struct {
	chats  *store.Chats
	logger *logger.Logger
}

// NewChatHandler creates a chat handler.
func NewChatHandler(chats *store.Chats, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		chats:  chats,
		logger: log,
	}
}

// Create handles POST /api/v1/chats
func (h *ChatHandler) Create(w http.ResponseWriter, r *http.Request) {
	chat := h.chats.CreateChat(r.Context())
	writeJSON(w, http.StatusCreated, model.CreateChatResponse{Chat: chat})
}

// List handles GET /api/v1/chats
func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.ListChatsResponse{
		Chats:         h.chats.RecentChats(),
		CurrentChatID: h.chats.CurrentChatID(),
	})
}

// Get handles GET /api/v1/chats/{id}
func (h *ChatHandler) Get(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "id")

	if err := middleware.ValidateChatID(chatID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	chat, ok := h.chats.GetChatByID(chatID)
	if !ok {
		writeError(w, http.StatusNotFound, "chat not found")
		return
	}

	writeJSON(w, http.StatusOK, chat)
}

// Delete handles DELETE /api/v1/chats/{id}. Deleting an absent chat
// succeeds; the operation is a soft no-op.
func (h *ChatHandler) Delete(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "id")

	if err := middleware.ValidateChatID(chatID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.chats.DeleteChat(r.Context(), chatID)
	w.WriteHeader(http.StatusNoContent)
}

// SetCurrent handles PUT /api/v1/chats/current. The pointer is set
// without validating that the target exists.
func (h *ChatHandler) SetCurrent(w http.ResponseWriter, r *http.Request) {
	var req model.SetCurrentChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateChatID(req.ChatID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.chats.SetCurrentChat(r.Context(), req.ChatID)
	w.WriteHeader(http.StatusNoContent)
}
