package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"consistai-backend/internal/models"
)

func TestParseRankingOutput(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantKind RankingOutputKind
		wantLen  int
	}{
		{"list", `[{"modelName":"Gemma","responseText":"4","accuracy":0.95},{"modelName":"Qwen","responseText":"four","accuracy":0.8}]`, RankingOutputList, 2},
		{"fenced list", "```json\n[{\"modelName\":\"Gemma\",\"responseText\":\"4\",\"accuracy\":0.95}]\n```", RankingOutputList, 1},
		{"single object", `{"modelName":"Gemma","responseText":"4","accuracy":0.95}`, RankingOutputSingle, 1},
		{"null", `null`, RankingOutputEmpty, 0},
		{"empty text", ``, RankingOutputEmpty, 0},
		{"number", `42`, RankingOutputEmpty, 0},
		{"object missing accuracy", `{"modelName":"Gemma","responseText":"4"}`, RankingOutputEmpty, 0},
		{"object with wrong types", `{"modelName":1,"responseText":"4","accuracy":"high"}`, RankingOutputEmpty, 0},
		{"list of junk", `[1, "two", {"foo": 3}]`, RankingOutputEmpty, 0},
		{"list with some junk", `[{"modelName":"Llama","responseText":"ok","accuracy":0.5}, {"foo": 3}]`, RankingOutputList, 1},
		{"prose around list", `Here you go: [{"modelName":"Llama","responseText":"ok","accuracy":0.5}] hope it helps`, RankingOutputList, 1},
		{"broken json", `[{"modelName":`, RankingOutputEmpty, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := ParseRankingOutput(tc.raw)
			assert.Equal(t, tc.wantKind, out.Kind)

			responses := out.Responses()
			assert.NotNil(t, responses)
			assert.Len(t, responses, tc.wantLen)
		})
	}
}

func TestParseRankingOutput_ClampsAccuracy(t *testing.T) {
	out := ParseRankingOutput(`[{"modelName":"A","responseText":"a","accuracy":1.7},{"modelName":"B","responseText":"b","accuracy":-0.2}]`)
	require.Len(t, out.Items, 2)
	assert.Equal(t, 1.0, out.Items[0].Accuracy)
	assert.Equal(t, 0.0, out.Items[1].Accuracy)
}

func TestRankingService_WrapsSingleObject(t *testing.T) {
	backend := &stubBackend{available: true, reply: `{"modelName":"Gemma","responseText":"4","accuracy":0.95}`}
	svc := NewRankingService(backend)

	items, err := svc.Rank(context.Background(), RankRequest{UserPromptText: "What's 2+2?", Personas: models.DefaultPersonas()})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Gemma", items[0].ModelName)
}

func TestRankingService_UnrecognizedShapeIsEmpty(t *testing.T) {
	for _, raw := range []string{"", "null", `"just text"`, `{"unexpected": true}`} {
		backend := &stubBackend{available: true, reply: raw}
		items, err := NewRankingService(backend).Rank(context.Background(), RankRequest{UserPromptText: "hi"})
		require.NoError(t, err, raw)
		assert.Empty(t, items, raw)
	}
}

func TestRankingService_PromptCarriesPersonasHistoryAndLanguage(t *testing.T) {
	backend := &stubBackend{available: true, reply: `[]`}
	svc := NewRankingService(backend)

	_, err := svc.Rank(context.Background(), RankRequest{
		UserPromptText:      "Namaste",
		ConversationHistory: "User: hello\nAssistant: hi",
		Personas:            models.DefaultPersonas(),
		InputLanguage:       "hi-IN",
	})
	require.NoError(t, err)

	prompt := backend.promptText()
	for _, p := range models.DefaultPersonas() {
		assert.Contains(t, prompt, "- Model Persona: "+p.ModelDisplayName)
	}
	assert.Contains(t, prompt, "User: hello\nAssistant: hi")
	assert.Contains(t, prompt, "language code: hi-IN")
	assert.Contains(t, prompt, `"Namaste"`)
	assert.Len(t, backend.parts, 1)
}

func TestRankingService_AttachesImage(t *testing.T) {
	backend := &stubBackend{available: true, reply: `[]`}
	svc := NewRankingService(backend)

	_, err := svc.Rank(context.Background(), RankRequest{
		UserPromptText:         "what is this?",
		UserPromptImageDataURI: dataURI("image/png", []byte{0x89, 0x50, 0x4e, 0x47}),
	})
	require.NoError(t, err)
	require.Len(t, backend.parts, 2)

	blob, ok := backend.parts[1].(genai.Blob)
	require.True(t, ok)
	assert.Equal(t, "image/png", blob.MIMEType)
	assert.Equal(t, []byte{0x89, 0x50, 0x4e, 0x47}, blob.Data)
}

func TestRankingService_BackendError(t *testing.T) {
	backend := &stubBackend{available: true, err: errors.New("network down")}
	_, err := NewRankingService(backend).Rank(context.Background(), RankRequest{UserPromptText: "hi"})
	assert.ErrorContains(t, err, "network down")
}
