// Package main is the entry point for the docgate API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"docgate/internal/core/security"
	"docgate/internal/domain/auth"
	"docgate/internal/domain/documents"
	"docgate/internal/domain/events"
	"docgate/internal/domain/identity"
	"docgate/internal/infrastructure/authority"
	v1 "docgate/internal/infrastructure/http/v1"
	"docgate/internal/infrastructure/storage/postgres"
	"docgate/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	multiUser := getEnv("MULTI_USER_MODE", "false") == "true"
	log.Infow("starting docgate server", "multi_user", multiUser)

	// --- Database ---
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(mustEnv("DATABASE_URL")))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	// --- Event log ---
	var eventLog events.Logger
	eventLog, err = postgres.NewEventLog(pool)
	if err != nil {
		log.Fatalw("failed to initialize event log", "error", err)
	}

	// --- Validation strategy ---
	// Chosen once here and injected everywhere; no request is ever validated
	// under one strategy and authorized under another.
	userRepo := postgres.NewUserRepo(pool)
	reconciler := auth.NewReconciler(userRepo, eventLog)

	var (
		authenticator auth.Authenticator
		authService   *auth.Service
	)
	if multiUser {
		client := authority.NewClient(authority.Config{
			BaseURL: mustEnv("IDENTITY_AUTHORITY_URL"),
			APIKey:  mustEnv("INTERNAL_API_KEY"),
			Timeout: getEnvDuration("IDENTITY_AUTHORITY_TIMEOUT", 5*time.Second),
		})
		cache := identity.NewValidationCache(client)

		authenticator = auth.NewDelegatedValidator(cache, reconciler)
		authService = auth.NewService(client, cache, reconciler, eventLog)
		log.Info("delegated validation enabled")
	} else {
		enc, err := auth.NewEncryptionManager(getEnv("SIG_KEY", "docgate-default-passphrase"))
		if err != nil {
			log.Fatalw("failed to initialize encryption", "error", err)
		}

		cfg := auth.LocalConfig{
			RequiresAuth: getEnv("REQUIRES_AUTH", "true") == "true",
			AuthToken:    getEnv("AUTH_TOKEN", ""),
			JWTSecret:    getEnv("JWT_SECRET", ""),
			Development:  getEnv("APP_ENV", "development") == "development",
		}
		if cfg.BypassActive() && cfg.RequiresAuth {
			log.Warn("single-user auth bypass is active; set AUTH_TOKEN, JWT_SECRET and APP_ENV=production to enforce validation")
		}
		authenticator = auth.NewLocalValidator(cfg, enc)
		log.Info("single-user validation enabled")
	}

	// --- Document visibility ---
	var policy *security.PathPolicy
	if expr := getEnv("PATH_POLICY", ""); expr != "" {
		policy, err = security.CompilePathPolicy(expr)
		if err != nil {
			log.Fatalw("failed to compile path policy", "error", err, "expr", expr)
		}
		log.Infow("path policy enabled", "expr", expr)
	}

	uploadRepo := postgres.NewUploadRepo(pool)
	workspaceRepo := postgres.NewWorkspaceRepo(pool)
	resolver := documents.NewAccessResolver(uploadRepo, workspaceRepo, policy)
	documentService := documents.NewService(uploadRepo, resolver)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:            pool,
		Logger:          log,
		Authenticator:   authenticator,
		AuthService:     authService,
		DocumentService: documentService,
	})

	// --- HTTP server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
