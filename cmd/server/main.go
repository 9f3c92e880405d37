package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"consistai-backend/internal/config"
	"consistai-backend/internal/database"
	"consistai-backend/internal/handlers"
	"consistai-backend/internal/logging"
	"consistai-backend/internal/middleware"
	"consistai-backend/internal/models"
	"consistai-backend/internal/repository"
	"consistai-backend/internal/router"
	"consistai-backend/internal/services"
	"consistai-backend/internal/websocket"
)

func main() {
	logging.Preinit()
	slog.Info("🚀 Starting Consist-AI Backend...")

	if err := run(); err != nil {
		slog.Error("✗ Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// ──── Step 1: Load Environment Variables ────
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Init(cfg.LogLevel, cfg.Env)
	slog.Info("✓ Environment variables loaded", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ──── Step 2: Initialize Redis (optional) ────
	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		slog.Info("✓ Redis connected")
	} else {
		slog.Info("✓ Redis not configured, session updates stay in process")
	}

	// ──── Step 3: Initialize Gemini Client ────
	geminiService, err := services.NewGeminiService(services.GeminiConfig{
		APIKey:            cfg.GeminiAPIKey,
		Model:             cfg.GeminiModel,
		ConcurrentReqs:    cfg.GeminiConcurrentReqs,
		RequestsPerMinute: cfg.GeminiRequestsPerMin,
	})
	if err != nil {
		return fmt.Errorf("gemini client initialization failed: %w", err)
	}
	defer geminiService.Close()
	if geminiService.Available() {
		slog.Info("✓ Gemini client initialized", "model", cfg.GeminiModel)
	} else {
		slog.Warn("GOOGLE_API_KEY is not set, chat replies and transcription are disabled")
	}

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	sessionRepo := repository.NewSessionRepo(cfg.SessionTTL())
	wsHub := websocket.NewHub(redisClient, jwtAuth)
	defer wsHub.Close()

	personas := models.DefaultPersonas()
	responder := services.NewResponder(services.NewRankingService(geminiService), personas)
	chatService := services.NewChatService(sessionRepo, responder, wsHub)
	transcriptionService := services.NewTranscriptionService(geminiService)

	// ──── Initialize Handlers ────
	sessionHandler := handlers.NewSessionHandler(chatService, jwtAuth, cfg.SessionTTL())
	transcriptionHandler := handlers.NewTranscriptionHandler(transcriptionService)
	personaHandler := handlers.NewPersonaHandler(responder.Personas())

	aiLimiter := middleware.NewRateLimiter(cfg.ChatRateLimitPerMin, time.Minute)

	// ──── Step 4: Start HTTP Server ────
	r := router.New(jwtAuth, sessionHandler, transcriptionHandler, personaHandler, wsHub, aiLimiter, cfg.FrontendURL)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return sessionRepo.Run(gctx)
	})

	g.Go(func() error {
		return aiLimiter.Run(gctx)
	})

	g.Go(func() error {
		slog.Info(fmt.Sprintf("✓ Consist-AI Backend ready on http://localhost:%s", cfg.Port))
		slog.Info(fmt.Sprintf("  API: http://localhost:%s/api/v1", cfg.Port))
		slog.Info(fmt.Sprintf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port))

		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
