package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/orbitchat-ai/demo-platform/internal/auth"
	"github.com/orbitchat-ai/demo-platform/internal/engine"
	"github.com/orbitchat-ai/demo-platform/internal/middleware"
	"github.com/orbitchat-ai/demo-platform/internal/model"
	"github.com/orbitchat-ai/demo-platform/internal/storage"
	"github.com/orbitchat-ai/demo-platform/internal/store"
	"github.com/orbitchat-ai/demo-platform/pkg/logger"
)

const testSecret = "handler-test-secret"

type testServer struct {
	router    chi.Router
	authStore *store.Auth
	chatStore *store.Chats
	engine    *engine.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	log := logger.NewNop()
	substrate := storage.NewMemory()

	authStore := store.NewAuth(substrate, log)
	chatStore := store.NewChats(substrate, log)
	eng := engine.New(chatStore, engine.Config{
		ReplyDelayMin:   time.Millisecond,
		ReplyDelayMax:   time.Millisecond,
		HistoryDelay:    0,
		HistoryPageSize: 20,
		HistoryMaxPages: 3,
	}, log)
	t.Cleanup(eng.Close)

	authSvc := auth.NewService(authStore, testSecret, time.Hour, log)

	authHandler := NewAuthHandler(authSvc, authStore, log)
	chatHandler := NewChatHandler(chatStore, log)
	sessionHandler := NewSessionHandler(eng, log)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/verify", authHandler.Verify)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(testSecret))

			r.Post("/auth/logout", authHandler.Logout)
			r.Get("/profile", authHandler.GetProfile)
			r.Put("/profile", authHandler.UpdateProfile)

			r.Route("/chats", func(r chi.Router) {
				r.Post("/", chatHandler.Create)
				r.Get("/", chatHandler.List)
				r.Put("/current", chatHandler.SetCurrent)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", chatHandler.Get)
					r.Delete("/", chatHandler.Delete)
				})
			})

			r.Route("/session", func(r chi.Router) {
				r.Post("/", sessionHandler.Open)
				r.Get("/", sessionHandler.Get)
				r.Delete("/", sessionHandler.Close)
				r.Post("/messages", sessionHandler.Send)
				r.Post("/history", sessionHandler.LoadOlder)
			})
		})
	})

	return &testServer{
		router:    r,
		authStore: authStore,
		chatStore: chatStore,
		engine:    eng,
	}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) login(t *testing.T) string {
	t.Helper()

	rec := ts.do(t, http.MethodPost, "/api/v1/auth/verify", "", model.VerifyRequest{
		Name: "Ada", CountryCode: "IN", Phone: "9876543210", OTP: "000000",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.VerifyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Token
}

func TestLoginReturnsDemoOTP(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", model.LoginRequest{
		Name: "Ada", CountryCode: "IN", Phone: "9876543210",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.OTPSent)
	require.Equal(t, "000000", resp.DemoOTP)
}

func TestLoginRejectsBadPhone(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", model.LoginRequest{
		Name: "Ada", CountryCode: "IN", Phone: "123",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyWrongCode(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/auth/verify", "", model.VerifyRequest{
		Name: "Ada", CountryCode: "IN", Phone: "9876543210", OTP: "999999",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Nil(t, ts.authStore.Profile())
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/chats", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/chats", "not-a-token", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChatLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t)

	// Create
	rec := ts.do(t, http.MethodPost, "/api/v1/chats", token, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created model.CreateChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, model.DefaultChatTitle, created.Chat.Title)

	// Get
	rec = ts.do(t, http.MethodGet, "/api/v1/chats/"+created.Chat.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// List shows it as current
	rec = ts.do(t, http.MethodGet, "/api/v1/chats", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list model.ListChatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Chats, 1)
	require.Equal(t, created.Chat.ID, list.CurrentChatID)

	// Delete clears the pointer
	rec = ts.do(t, http.MethodDelete, "/api/v1/chats/"+created.Chat.ID, token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, ts.chatStore.CurrentChatID())

	// Deleting again is still a success
	rec = ts.do(t, http.MethodDelete, "/api/v1/chats/"+created.Chat.ID, token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestGetUnknownChat(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/chats/chat-12345", token, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/chats/bogus", token, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionSendCreatesChat(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/session/messages", token, model.SendMessageRequest{
		Content: "hello from http",
	})
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp model.SendMessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ChatID)
	require.True(t, resp.ReplyPending)
	require.Equal(t, model.RoleUser, resp.Message.Role)

	require.Eventually(t, func() bool {
		return !ts.engine.Snapshot().ReplyPending
	}, 2*time.Second, 5*time.Millisecond)

	rec = ts.do(t, http.MethodGet, "/api/v1/session", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var snap model.SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	require.Len(t, snap.Messages, 2)
	require.Equal(t, model.RoleAssistant, snap.Messages[1].Role)
}

func TestSessionRejectsEmptySend(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/session/messages", token, model.SendMessageRequest{
		Content: "   ",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionHistoryOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/session/messages", token, model.SendMessageRequest{
		Content: "seed",
	})
	require.Equal(t, http.StatusAccepted, rec.Code)

	require.Eventually(t, func() bool {
		return !ts.engine.Snapshot().ReplyPending
	}, 2*time.Second, 5*time.Millisecond)

	rec = ts.do(t, http.MethodPost, "/api/v1/session/history", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var snap model.SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	require.Len(t, snap.Messages, 22)
	require.True(t, snap.HasMore)
}

func TestProfileRoundTripOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var p model.Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	require.Equal(t, "Ada", p.Name)
	require.True(t, p.IsAuthenticated)

	rec = ts.do(t, http.MethodPut, "/api/v1/profile", token, model.UpdateProfileRequest{
		Name: "Grace", Phone: "1234567890",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	require.Equal(t, "Grace", p.Name)
	require.Equal(t, "IN", p.CountryCode)
}

func TestLogoutOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Nil(t, ts.authStore.Profile())

	// The token still parses, but the profile is gone.
	rec = ts.do(t, http.MethodGet, "/api/v1/profile", token, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	h := NewHealthHandler(nil)

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}
