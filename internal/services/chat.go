package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"consistai-backend/internal/models"
	"consistai-backend/internal/repository"
)

const (
	welcomeMessage       = "Hi there! I'm Consist-AI. How can I help you today? You can also send images!"
	noResponseMessage    = "I couldn't find a suitable model response for your query at this time."
	genericFailedMessage = "AI interaction failed. Please try again."
)

type ResetReason string

const (
	ResetNewChat      ResetReason = "new_chat"
	ResetClearHistory ResetReason = "clear_history"
)

type sessionStore interface {
	Create(ctx context.Context, s models.Session) error
	Get(ctx context.Context, id uuid.UUID) (models.Session, error)
	Update(ctx context.Context, id uuid.UUID, fn func(models.Session) (models.Session, error)) (models.Session, error)
}

type responseSource interface {
	GetRankedResponse(ctx context.Context, input models.UserMessagePayload, history []models.ChatMessage, inputLanguage string) (*models.RankedResponseItem, error)
}

// SessionPublisher receives every session state change.
type SessionPublisher interface {
	PublishSession(ctx context.Context, s models.Session)
}

// ChatService owns per-session message state and runs one ranked turn at a
// time for each session.
type ChatService struct {
	store     sessionStore
	responder responseSource
	publisher SessionPublisher
	now       func() time.Time
}

func NewChatService(store sessionStore, responder responseSource, publisher SessionPublisher) *ChatService {
	return &ChatService{
		store:     store,
		responder: responder,
		publisher: publisher,
		now:       time.Now,
	}
}

func (s *ChatService) CreateSession(ctx context.Context) (models.Session, error) {
	session := models.NewSession(uuid.New(), s.welcome())
	if err := s.store.Create(ctx, session); err != nil {
		return models.Session{}, err
	}
	return session, nil
}

func (s *ChatService) GetSession(ctx context.Context, id uuid.UUID) (models.Session, error) {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return models.Session{}, mapStoreError(err)
	}
	return session, nil
}

// SendMessage runs one chat turn. AI failures never surface as errors here:
// they are recorded in the conversation as an error message.
func (s *ChatService) SendMessage(ctx context.Context, id uuid.UUID, req models.SendMessageRequest) (*models.SendMessageResponse, error) {
	if strings.TrimSpace(req.Text) == "" && req.ImageDataURI == "" {
		return nil, &ValidationError{Fields: map[string]string{
			"text": "Please type a message or select an image.",
		}}
	}
	if req.ImageDataURI != "" {
		if _, err := decodeMediaDataURI(req.ImageDataURI, "image"); err != nil {
			return nil, &ValidationError{Fields: map[string]string{
				"image_data_uri": "Could not process the image. Please try again.",
			}}
		}
	}

	payload := models.UserMessagePayload{Text: req.Text, ImageDataURI: req.ImageDataURI}
	content := models.TextContent(req.Text)
	if req.ImageDataURI != "" {
		content = models.PayloadContent(payload)
	}

	userMsg := models.ChatMessage{
		ID:        uuid.New(),
		Role:      models.RoleUser,
		Type:      models.MessageTypeText,
		Content:   content,
		Timestamp: s.now(),
	}

	var history []models.ChatMessage
	session, err := s.store.Update(ctx, id, func(cur models.Session) (models.Session, error) {
		history = cur.History()
		return cur.BeginTurn(userMsg)
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	s.publish(ctx, session)

	top, rankErr := s.rankTurn(ctx, payload, history, req.InputLanguage)
	reply, outcome, notice := s.buildReply(top, rankErr)

	session, err = s.store.Update(ctx, id, func(cur models.Session) (models.Session, error) {
		return cur.CompleteTurn(reply)
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	s.publish(ctx, session)

	return &models.SendMessageResponse{
		Session: session,
		Reply:   session.Messages[len(session.Messages)-1],
		Outcome: outcome,
		Notice:  notice,
	}, nil
}

// ResetSession clears the conversation back to the welcome message.
func (s *ChatService) ResetSession(ctx context.Context, id uuid.UUID, reason ResetReason) (models.Session, models.Notice, error) {
	session, err := s.store.Update(ctx, id, func(cur models.Session) (models.Session, error) {
		if cur.Status == models.SessionAwaitingResponse {
			return cur, models.ErrSessionBusy
		}
		return cur.Reset(s.welcome()), nil
	})
	if err != nil {
		return models.Session{}, models.Notice{}, mapStoreError(err)
	}
	s.publish(ctx, session)

	notice := models.Notice{Title: "New Chat Started", Description: "Previous messages cleared."}
	if reason == ResetClearHistory {
		notice = models.Notice{Title: "Chat History Cleared", Description: "Your conversation has been cleared."}
	}
	return session, notice, nil
}

// rankTurn converts a responder panic into an error so the turn still
// completes and the session returns to idle.
func (s *ChatService) rankTurn(ctx context.Context, payload models.UserMessagePayload, history []models.ChatMessage, inputLanguage string) (top *models.RankedResponseItem, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Responder panicked", "panic", r, "stack", string(debug.Stack()))
			top, err = nil, fmt.Errorf("responder panicked: %v", r)
		}
	}()
	return s.responder.GetRankedResponse(ctx, payload, history, inputLanguage)
}

func (s *ChatService) buildReply(top *models.RankedResponseItem, err error) (models.ChatMessage, models.TurnOutcome, *models.Notice) {
	msg := models.ChatMessage{
		ID:        uuid.New(),
		Role:      models.RoleAssistant,
		Timestamp: s.now(),
	}

	if err != nil {
		text := genericFailedMessage
		var cfgErr *ConfigurationError
		if errors.As(err, &cfgErr) {
			text = cfgErr.Message
		} else {
			slog.Error("Error getting AI response", "error", err)
		}
		msg.Type = models.MessageTypeError
		msg.Content = models.TextContent(text)
		return msg, models.OutcomeError, &models.Notice{Title: "AI Error", Description: text, Variant: "destructive"}
	}

	if top == nil {
		msg.Type = models.MessageTypeText
		msg.Content = models.TextContent(noResponseMessage)
		return msg, models.OutcomeNoSuitableResponse, &models.Notice{
			Title:       "No Response",
			Description: "No suitable model response could be determined.",
		}
	}

	msg.Type = models.MessageTypeSingleModelResponse
	msg.Content = models.RankedContent(*top)
	return msg, models.OutcomeSuccess, nil
}

func (s *ChatService) welcome() models.ChatMessage {
	return models.ChatMessage{
		ID:        uuid.New(),
		Role:      models.RoleAssistant,
		Type:      models.MessageTypeText,
		Content:   models.TextContent(welcomeMessage),
		Timestamp: s.now(),
	}
}

func (s *ChatService) publish(ctx context.Context, session models.Session) {
	if s.publisher != nil {
		s.publisher.PublishSession(ctx, session)
	}
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, repository.ErrSessionNotFound):
		return &NotFoundError{Message: "Session not found"}
	case errors.Is(err, models.ErrSessionBusy):
		return &ConflictError{Message: "Please wait for the current response before sending another message"}
	case errors.Is(err, models.ErrNoTurnInProgress):
		return &ConflictError{Message: "No message is awaiting a response"}
	default:
		return err
	}
}
