package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/generative-ai-go/genai"

	"consistai-backend/internal/models"
)

// RankRequest carries everything one ranking call needs.
type RankRequest struct {
	UserPromptText         string
	UserPromptImageDataURI string
	ConversationHistory    string
	Personas               []models.PersonaSpec
	InputLanguage          string
}

type rankingBackend interface {
	Available() bool
	GenerateRanking(ctx context.Context, parts ...genai.Part) (string, error)
}

// RankingService simulates one answer per persona and scores them with a
// single backend call.
type RankingService struct {
	backend rankingBackend
}

func NewRankingService(backend rankingBackend) *RankingService {
	return &RankingService{backend: backend}
}

func (s *RankingService) Available() bool {
	return s.backend.Available()
}

// Rank returns the backend's ranked persona responses. Malformed output is not
// an error: it degrades to an empty list, and a lone object is wrapped.
func (s *RankingService) Rank(ctx context.Context, req RankRequest) ([]models.RankedResponseItem, error) {
	parts := []genai.Part{genai.Text(buildRankingPrompt(req))}

	if req.UserPromptImageDataURI != "" {
		media, err := decodeMediaDataURI(req.UserPromptImageDataURI, "image")
		if err != nil {
			return nil, fmt.Errorf("invalid image attachment: %w", err)
		}
		parts = append(parts, genai.Blob{MIMEType: media.MIMEType, Data: media.Data})
	}

	raw, err := s.backend.GenerateRanking(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("ranking request failed: %w", err)
	}

	out := ParseRankingOutput(raw)
	switch out.Kind {
	case RankingOutputSingle:
		slog.Warn("Ranking output was a single object, wrapping in a list", "model_name", out.Items[0].ModelName)
	case RankingOutputEmpty:
		slog.Warn("Ranking output was empty or not in the expected shape", "raw_length", len(raw))
	case RankingOutputList:
		if len(out.Items) != len(req.Personas) {
			slog.Debug("Ranking output persona count differs", "expected", len(req.Personas), "got", len(out.Items))
		}
	}

	return out.Responses(), nil
}
