package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"consistai-backend/internal/middleware"
	"consistai-backend/internal/models"
	"consistai-backend/internal/services"
)

type sessionService interface {
	CreateSession(ctx context.Context) (models.Session, error)
	GetSession(ctx context.Context, id uuid.UUID) (models.Session, error)
	SendMessage(ctx context.Context, id uuid.UUID, req models.SendMessageRequest) (*models.SendMessageResponse, error)
	ResetSession(ctx context.Context, id uuid.UUID, reason services.ResetReason) (models.Session, models.Notice, error)
}

type tokenIssuer interface {
	GenerateSessionToken(sessionID uuid.UUID, ttl time.Duration) (string, error)
}

type SessionHandler struct {
	chat     sessionService
	tokens   tokenIssuer
	tokenTTL time.Duration
	maxBody  int64
}

func NewSessionHandler(chat sessionService, tokens tokenIssuer, tokenTTL time.Duration) *SessionHandler {
	return &SessionHandler{chat: chat, tokens: tokens, tokenTTL: tokenTTL, maxBody: maxMessageBody}
}

// Create starts a new conversation and returns the bearer token bound to it.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	session, err := h.chat.CreateSession(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	token, err := h.tokens.GenerateSessionToken(session.ID, h.tokenTTL)
	if err != nil {
		slog.Error("Failed to sign session token", "session_id", session.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create session", r))
		return
	}

	writeJSON(w, http.StatusCreated, models.CreateSessionResponse{
		Session:   session,
		Token:     token,
		ExpiresIn: int(h.tokenTTL.Seconds()),
	})
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := h.chat.GetSession(r.Context(), middleware.GetSessionID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *SessionHandler) NewChat(w http.ResponseWriter, r *http.Request) {
	h.reset(w, r, services.ResetNewChat)
}

func (h *SessionHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	h.reset(w, r, services.ResetClearHistory)
}

func (h *SessionHandler) reset(w http.ResponseWriter, r *http.Request, reason services.ResetReason) {
	session, notice, err := h.chat.ResetSession(r.Context(), middleware.GetSessionID(r.Context()), reason)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.ResetSessionResponse{Session: session, Notice: notice})
}
