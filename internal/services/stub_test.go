package services

import (
	"context"
	"encoding/base64"

	"github.com/google/generative-ai-go/genai"
)

// stubBackend stands in for GeminiService.
type stubBackend struct {
	available bool
	reply     string
	err       error

	calls int
	parts []genai.Part
}

func (b *stubBackend) Available() bool { return b.available }

func (b *stubBackend) GenerateRanking(ctx context.Context, parts ...genai.Part) (string, error) {
	b.calls++
	b.parts = parts
	return b.reply, b.err
}

func (b *stubBackend) GenerateTranscription(ctx context.Context, parts ...genai.Part) (string, error) {
	b.calls++
	b.parts = parts
	return b.reply, b.err
}

func (b *stubBackend) promptText() string {
	for _, p := range b.parts {
		if t, ok := p.(genai.Text); ok {
			return string(t)
		}
	}
	return ""
}

func dataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
