// Package main provides the match engine API server entrypoint.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/faqdesk-ai/match-engine/internal/ai"
	"github.com/faqdesk-ai/match-engine/internal/cache"
	"github.com/faqdesk-ai/match-engine/internal/chat"
	"github.com/faqdesk-ai/match-engine/internal/config"
	"github.com/faqdesk-ai/match-engine/internal/matching"
	"github.com/faqdesk-ai/match-engine/internal/monitoring"
	"github.com/faqdesk-ai/match-engine/internal/observability"
	"github.com/faqdesk-ai/match-engine/internal/storage"
)

func main() {
	// .env is optional; real deployments set environment directly.
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if len(os.Args) > 2 && os.Args[1] == "--config" {
		cfgPath = os.Args[2]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: "match-engine-api",
	})

	logger.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("database", cfg.Database.Driver).
		Str("cache", cfg.Cache.Driver).
		Bool("ai_enabled", cfg.AI.Enabled).
		Msg("Starting match engine API")

	db, err := sql.Open(cfg.DriverName(), cfg.DatabaseDSN())
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	if cfg.Database.Driver == "postgres" {
		db.SetMaxOpenConns(cfg.Database.Postgres.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.Postgres.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.Database.Postgres.ConnMaxLifetime)
	} else {
		db.SetMaxOpenConns(cfg.Database.SQLite.MaxOpenConns)
	}

	if err := db.Ping(); err != nil {
		logger.Fatal().Err(err).Msg("Database unreachable")
	}

	repos := storage.NewRepositories(db)

	var cacheClient cache.Client
	var redisClient *cache.RedisClient
	if cfg.Cache.Driver == "redis" {
		redisClient, err = cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			PoolSize: cfg.Cache.Redis.PoolSize,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		cacheClient = redisClient
	} else {
		cacheClient = cache.NewMemoryClient(cfg.Cache.MaxEntries)
	}
	defer cacheClient.Close()

	// The AI matcher is optional; without credentials the router skips
	// the AI stage entirely and degrades to the canned fallback.
	var aiMatcher matching.AIMatcher
	if cfg.AI.Enabled {
		client, err := ai.NewClient(ai.Config{
			APIKey:           cfg.AI.APIKey,
			Model:            cfg.AI.Model,
			BaseURL:          cfg.AI.BaseURL,
			Timeout:          cfg.AI.Timeout,
			MaxFAQs:          cfg.AI.MaxFAQs,
			AnswerPreviewLen: cfg.AI.AnswerPreviewLen,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to create AI client")
		}
		aiMatcher = client
		logger.Info().Str("model", client.Model()).Msg("AI fallback enabled")
	}

	matchRouter := matching.NewRouter(matching.RouterConfig{
		ConfidenceThreshold:   cfg.Matching.ConfidenceThreshold,
		AIConfidenceThreshold: cfg.Matching.AIConfidenceThreshold,
		FallbackMessage:       cfg.Matching.FallbackMessage,
	}, aiMatcher, logger)

	audit := monitoring.NewAuditLogger(logger, redisClient)

	service := chat.NewService(chat.StoresFromRepositories(repos), matchRouter, cacheClient, audit, logger, chat.Config{
		SettingsTTL:   cfg.Cache.SettingsTTL,
		MaxMessageLen: cfg.Matching.MaxMessageLen,
	})

	router := NewRouter(logger, AppConfig{
		RequestTimeout: cfg.Server.ReadTimeout,
		CORSOrigins:    cfg.Server.CORSOrigins,
	}, service, repos.Tenants)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("HTTP server listening")
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error().Err(err).Msg("Server error")
	case sig := <-shutdown:
		logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
		if err := srv.Close(); err != nil {
			logger.Error().Err(err).Msg("Forced shutdown failed")
		}
	}

	logger.Info().Msg("Server stopped")
}
