// Package main provides the API router setup.
package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/faqdesk-ai/match-engine/cmd/match-engine-api/handlers"
	"github.com/faqdesk-ai/match-engine/cmd/match-engine-api/middleware"
	"github.com/faqdesk-ai/match-engine/internal/api/rpc"
	"github.com/faqdesk-ai/match-engine/internal/chat"
	"github.com/faqdesk-ai/match-engine/internal/observability"
	"github.com/faqdesk-ai/match-engine/internal/storage"
)

// AppConfig holds the router's runtime settings.
type AppConfig struct {
	RequestTimeout time.Duration
	CORSOrigins    []string
}

// NewRouter creates the main API router with all routes configured.
func NewRouter(logger *observability.Logger, cfg AppConfig, service *chat.Service, tenants *storage.TenantRepository) http.Handler {
	r := chi.NewRouter()

	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(chimiddleware.Timeout(cfg.RequestTimeout))

	// Health check (unauthenticated)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"match-engine"}`))
	})

	chatHandler := handlers.NewChatHandler(logger, service)
	leadsHandler := handlers.NewLeadsHandler(logger, service)
	faqsHandler := handlers.NewFAQsHandler(logger, service)
	chatService := rpc.NewChatService(logger, service)

	r.Route("/api/v1", func(r chi.Router) {
		// Public widget routes, resolved by widget key.
		r.Route("/widget/{widgetKey}", func(r chi.Router) {
			r.Get("/config", chatHandler.Config)
			r.Post("/chat", chatHandler.Message)
			r.Post("/leads", leadsHandler.Create)
		})

		// Admin routes, authenticated by tenant API key.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tenants, logger))

			r.Get("/faqs", faqsHandler.List)
			r.Put("/faqs", faqsHandler.Replace)
			r.Get("/settings", faqsHandler.GetSettings)
			r.Put("/settings", faqsHandler.UpdateSettings)
			r.Get("/leads", leadsHandler.List)
			r.Get("/conversations", faqsHandler.Conversations)
			r.Get("/stats", faqsHandler.Stats)
		})
	})

	// Connect RPC for server-to-server matching, behind the same
	// API-key authentication as the admin routes.
	rpcPath, rpcHandler := chatService.Handler()
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(tenants, logger))
		r.Handle(rpcPath, rpcHandler)
	})

	return r
}
