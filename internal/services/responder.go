package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"consistai-backend/internal/models"
)

const missingAPIKeyMessage = "Server configuration error: Missing API key."

type ranker interface {
	Available() bool
	Rank(ctx context.Context, req RankRequest) ([]models.RankedResponseItem, error)
}

// Responder turns a user turn plus prior history into the single best persona
// response.
type Responder struct {
	ranker   ranker
	personas []models.PersonaSpec
}

func NewResponder(r ranker, personas []models.PersonaSpec) *Responder {
	return &Responder{ranker: r, personas: slices.Clone(personas)}
}

func (r *Responder) Personas() []models.PersonaSpec {
	return slices.Clone(r.personas)
}

// GetRankedResponse returns nil with no error when the backend produced no
// usable candidate. A missing credential fails before any network call.
func (r *Responder) GetRankedResponse(ctx context.Context, input models.UserMessagePayload, history []models.ChatMessage, inputLanguage string) (*models.RankedResponseItem, error) {
	if !r.ranker.Available() {
		slog.Error("GOOGLE_API_KEY is not set")
		return nil, &ConfigurationError{Message: missingAPIKeyMessage}
	}

	items, err := r.ranker.Rank(ctx, RankRequest{
		UserPromptText:         input.Text,
		UserPromptImageDataURI: input.ImageDataURI,
		ConversationHistory:    BuildHistoryContext(history),
		Personas:               r.personas,
		InputLanguage:          inputLanguage,
	})
	if err != nil {
		return nil, fmt.Errorf("AI interaction failed: %w", err)
	}

	top, ok := SelectTopResponse(items)
	if !ok {
		slog.Warn("No ranked responses received")
		return nil, nil
	}

	return &models.RankedResponseItem{
		ModelName:    top.ModelName,
		ResponseText: top.ResponseText,
		Accuracy:     top.Accuracy,
	}, nil
}
