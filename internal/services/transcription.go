package services

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/generative-ai-go/genai"
)

type transcriptionBackend interface {
	Available() bool
	GenerateTranscription(ctx context.Context, parts ...genai.Part) (string, error)
}

type TranscriptionService struct {
	backend transcriptionBackend
}

func NewTranscriptionService(backend transcriptionBackend) *TranscriptionService {
	return &TranscriptionService{backend: backend}
}

// Transcribe converts an audio data URI to text. ok is false when the feature
// is unavailable (no credential, bad audio, backend failure). An empty string
// with ok=true means the model returned no usable transcript.
func (s *TranscriptionService) Transcribe(ctx context.Context, audioDataURI string) (text string, ok bool) {
	if !s.backend.Available() {
		slog.Error("GOOGLE_API_KEY is not set for transcription")
		return "", false
	}

	media, err := decodeMediaDataURI(audioDataURI, "audio")
	if err != nil {
		slog.Warn("Rejected audio payload", "error", err)
		return "", false
	}

	raw, err := s.backend.GenerateTranscription(ctx,
		genai.Text(buildTranscriptionPrompt()),
		genai.Blob{MIMEType: media.MIMEType, Data: media.Data},
	)
	if err != nil {
		slog.Error("Transcription request failed", "error", err)
		return "", false
	}

	return parseTranscription(raw), true
}

func parseTranscription(raw string) string {
	var out struct {
		TranscribedText *string `json:"transcribedText"`
	}
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &out); err != nil || out.TranscribedText == nil {
		slog.Warn("Transcription returned an empty or invalid result")
		return ""
	}
	return *out.TranscribedText
}
