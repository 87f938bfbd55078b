package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/orbitchat-ai/demo-platform/internal/auth"
	"github.com/orbitchat-ai/demo-platform/internal/model"
	"github.com/orbitchat-ai/demo-platform/internal/store"
	"github.com/orbitchat-ai/demo-platform/pkg/logger"
)

// AuthHandler handles the login flow and profile endpoints.
type AuthHandler struct {
	service   *auth.Service
	authStore *store.Auth
	logger    *logger.Logger
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(svc *auth.Service, authStore *store.Auth, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		service:   svc,
		authStore: authStore,
		logger:    log,
	}
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.service.BeginLogin(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Verify handles POST /api/v1/auth/verify
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req model.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.service.Verify(r.Context(), &req)
	if err != nil {
		if errors.Is(err, auth.ErrOTPMismatch) {
			writeError(w, http.StatusUnauthorized, "Invalid OTP. Please try again.")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.Info("login verified", zap.String("phone", resp.Profile.Phone))
	writeJSON(w, http.StatusOK, resp)
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.service.Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// GetProfile handles GET /api/v1/profile
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p := h.authStore.Profile()
	if p == nil {
		writeError(w, http.StatusNotFound, "no authenticated profile")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdateProfile handles PUT /api/v1/profile
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.service.UpdateProfile(r.Context(), &req)
	if err != nil {
		if errors.Is(err, store.ErrNoProfile) {
			writeError(w, http.StatusNotFound, "no authenticated profile")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, p)
}
