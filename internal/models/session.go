package models

import (
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionIdle             SessionStatus = "idle"
	SessionAwaitingResponse SessionStatus = "awaiting_response"
)

var (
	ErrSessionBusy      = errors.New("a response is still being generated for this conversation")
	ErrNoTurnInProgress = errors.New("no chat turn is in progress")
)

// Session is the per-conversation chat state. Transitions return a new value
// and never modify the receiver's message slice.
type Session struct {
	ID        uuid.UUID     `json:"id"`
	Status    SessionStatus `json:"status"`
	Messages  []ChatMessage `json:"messages"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func NewSession(id uuid.UUID, welcome ChatMessage) Session {
	return Session{
		ID:        id,
		Status:    SessionIdle,
		Messages:  []ChatMessage{welcome},
		CreatedAt: welcome.Timestamp,
		UpdatedAt: welcome.Timestamp,
	}
}

// BeginTurn appends the user message and moves the session to awaiting_response.
func (s Session) BeginTurn(msg ChatMessage) (Session, error) {
	if s.Status != SessionIdle {
		return s, ErrSessionBusy
	}
	next := s.withMessage(msg)
	next.Status = SessionAwaitingResponse
	return next, nil
}

// CompleteTurn appends the assistant reply and returns the session to idle.
func (s Session) CompleteTurn(reply ChatMessage) (Session, error) {
	if s.Status != SessionAwaitingResponse {
		return s, ErrNoTurnInProgress
	}
	next := s.withMessage(reply)
	next.Status = SessionIdle
	return next, nil
}

// Reset drops every message and starts over from the welcome message.
func (s Session) Reset(welcome ChatMessage) Session {
	next := NewSession(s.ID, welcome)
	next.CreatedAt = s.CreatedAt
	return next
}

// History returns a copy of the messages.
func (s Session) History() []ChatMessage {
	return slices.Clone(s.Messages)
}

func (s Session) withMessage(msg ChatMessage) Session {
	if n := len(s.Messages); n > 0 && msg.Timestamp.Before(s.Messages[n-1].Timestamp) {
		msg.Timestamp = s.Messages[n-1].Timestamp
	}

	msgs := make([]ChatMessage, len(s.Messages), len(s.Messages)+1)
	copy(msgs, s.Messages)
	s.Messages = append(msgs, msg)
	s.UpdatedAt = msg.Timestamp
	return s
}
