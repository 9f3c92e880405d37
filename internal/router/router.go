package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"consistai-backend/internal/handlers"
	"consistai-backend/internal/middleware"
	"consistai-backend/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	sessionHandler *handlers.SessionHandler,
	transcriptionHandler *handlers.TranscriptionHandler,
	personaHandler *handlers.PersonaHandler,
	wsHub *websocket.Hub,
	aiLimiter *middleware.RateLimiter,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(frontendURL))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/personas", personaHandler.List)
		r.Post("/sessions", sessionHandler.Create)

		// ──── Session Routes ────
		r.Route("/session", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", sessionHandler.Get)
			r.Post("/new-chat", sessionHandler.NewChat)
			r.Delete("/history", sessionHandler.ClearHistory)

			r.Group(func(r chi.Router) {
				r.Use(aiLimiter.Middleware)
				r.Use(chimiddleware.Timeout(2 * time.Minute))
				r.Post("/messages", sessionHandler.SendMessage)
			})
		})

		// ──── Transcription Routes ────
		r.Group(func(r chi.Router) {
			r.Use(aiLimiter.Middleware)
			r.Use(chimiddleware.Timeout(time.Minute))
			r.Post("/transcriptions", transcriptionHandler.Transcribe)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
