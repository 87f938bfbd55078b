// Package main is the entry point for the API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/orbitchat-ai/demo-platform/internal/auth"
	"github.com/orbitchat-ai/demo-platform/internal/config"
	"github.com/orbitchat-ai/demo-platform/internal/countries"
	"github.com/orbitchat-ai/demo-platform/internal/engine"
	"github.com/orbitchat-ai/demo-platform/internal/handler"
	"github.com/orbitchat-ai/demo-platform/internal/middleware"
	"github.com/orbitchat-ai/demo-platform/internal/storage"
	"github.com/orbitchat-ai/demo-platform/internal/store"
	"github.com/orbitchat-ai/demo-platform/pkg/logger"
	"github.com/orbitchat-ai/demo-platform/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting API server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "chat-demo-platform", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Select the persistence substrate
	substrate, readiness, cleanup, err := buildSubstrate(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize storage", zap.Error(err))
		os.Exit(1)
	}
	defer cleanup()

	// Initialize stores and hydrate them before serving traffic
	authStore := store.NewAuth(substrate, log)
	chatStore := store.NewChats(substrate, log)
	if err := authStore.Hydrate(ctx); err != nil {
		log.Warn("auth hydration failed, starting empty", zap.Error(err))
	}
	if err := chatStore.Hydrate(ctx); err != nil {
		log.Warn("chat hydration failed, starting empty", zap.Error(err))
	}

	// Initialize the simulation engine
	eng := engine.New(chatStore, engine.Config{
		ReplyDelayMin:   cfg.ReplyDelayMin,
		ReplyDelayMax:   cfg.ReplyDelayMax,
		HistoryDelay:    cfg.HistoryDelay,
		HistoryPageSize: cfg.HistoryPageSize,
		HistoryMaxPages: cfg.HistoryMaxPages,
	}, log)
	defer eng.Close()

	// Initialize services
	authSvc := auth.NewService(authStore, cfg.JWTSecret, cfg.JWTExpiration, log)
	countryClient := countries.NewClient(cfg.CountryAPIURL, cfg.CountryAPITimeout, log)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(readiness)
	authHandler := handler.NewAuthHandler(authSvc, authStore, log)
	chatHandler := handler.NewChatHandler(chatStore, log)
	sessionHandler := handler.NewSessionHandler(eng, log)
	countryHandler := handler.NewCountryHandler(countryClient)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Link", "X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		// Public: login flow and country metadata
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/verify", authHandler.Verify)
		r.Get("/countries", countryHandler.List)

		// Everything else requires a session token
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTSecret))

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

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}

// buildSubstrate constructs the configured persistence substrate along
// with a readiness check and a cleanup func.
func buildSubstrate(ctx context.Context, cfg *config.Config, log *logger.Logger) (storage.Store, handler.ReadinessCheck, func(), error) {
	noop := func() {}

	switch cfg.StorageBackend {
	case "sqlite":
		s, err := storage.NewSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, noop, err
		}
		log.Info("using sqlite storage", zap.String("path", cfg.SQLitePath))
		return s, nil, noop, nil

	case "nats":
		client, err := storage.ConnectNATS(ctx, storage.NATSConfig{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			return nil, nil, noop, err
		}
		kv, err := storage.NewKV(ctx, client)
		if err != nil {
			client.Close()
			return nil, nil, noop, err
		}
		ready := func() error {
			if !client.IsConnected() {
				return errors.New("NATS not connected")
			}
			return nil
		}
		log.Info("using NATS KV storage", zap.String("url", cfg.NATSURL))
		return kv, ready, client.Close, nil

	case "memory":
		log.Info("using in-memory storage")
		return storage.NewMemory(), nil, noop, nil

	default:
		// No persistent medium; all operations become silent no-ops.
		log.Warn("persistence disabled", zap.String("backend", cfg.StorageBackend))
		return storage.NewNoop(), nil, noop, nil
	}
}
