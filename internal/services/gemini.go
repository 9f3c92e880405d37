package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
)

type GeminiConfig struct {
	APIKey            string
	Model             string
	ConcurrentReqs    int
	RequestsPerMinute int
}

// GeminiService owns the Gemini client and the two structured-output models
// used by ranking and transcription. With no API key it is constructed in an
// unavailable state and never touches the network.
type GeminiService struct {
	client          *genai.Client
	rankModel       *genai.GenerativeModel
	transcribeModel *genai.GenerativeModel
	rateChan        chan struct{} // Token bucket
	limiter         *rate.Limiter
}

func NewGeminiService(cfg GeminiConfig) (*GeminiService, error) {
	if cfg.ConcurrentReqs < 1 {
		cfg.ConcurrentReqs = 1
	}
	if cfg.RequestsPerMinute < 1 {
		cfg.RequestsPerMinute = 60
	}

	rateChan := make(chan struct{}, cfg.ConcurrentReqs)
	for i := 0; i < cfg.ConcurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	s := &GeminiService{
		rateChan: rateChan,
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), cfg.ConcurrentReqs),
	}

	if cfg.APIKey == "" {
		return s, nil
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	s.client = client

	s.rankModel = client.GenerativeModel(cfg.Model)
	s.rankModel.SetTemperature(0.7)
	s.rankModel.ResponseMIMEType = "application/json"
	s.rankModel.ResponseSchema = rankingResponseSchema()

	s.transcribeModel = client.GenerativeModel(cfg.Model)
	s.transcribeModel.SetTemperature(0)
	s.transcribeModel.ResponseMIMEType = "application/json"
	s.transcribeModel.ResponseSchema = transcriptionResponseSchema()

	return s, nil
}

// Available reports whether an API credential was configured.
func (s *GeminiService) Available() bool {
	return s.client != nil
}

func (s *GeminiService) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

// GenerateRanking runs the persona ranking prompt and returns the raw JSON text.
func (s *GeminiService) GenerateRanking(ctx context.Context, parts ...genai.Part) (string, error) {
	return s.generate(ctx, s.rankModel, parts...)
}

// GenerateTranscription runs the transcription prompt and returns the raw JSON text.
func (s *GeminiService) GenerateTranscription(ctx context.Context, parts ...genai.Part) (string, error) {
	return s.generate(ctx, s.transcribeModel, parts...)
}

func (s *GeminiService) generate(ctx context.Context, model *genai.GenerativeModel, parts ...genai.Part) (string, error) {
	if model == nil {
		return "", &ConfigurationError{Message: "Gemini client is not configured"}
	}

	if err := s.acquireRate(ctx); err != nil {
		return "", err
	}
	defer s.releaseRate()

	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for Gemini rate limit: %w", err)
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop {
			slog.Warn("Gemini candidate stopped early", "candidate", i, "finish_reason", cand.FinishReason.String())
		}
	}

	return extractText(resp), nil
}

// acquireRate blocks until a rate slot is available
func (s *GeminiService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Minute):
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
}

func (s *GeminiService) releaseRate() {
	s.rateChan <- struct{}{}
}

func rankingResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"modelName":    {Type: genai.TypeString, Description: "The display name of the model persona."},
				"responseText": {Type: genai.TypeString, Description: "The simulated response text from the model persona."},
				"accuracy":     {Type: genai.TypeNumber, Description: "The accuracy score of the response (a number between 0.0 and 1.0)."},
			},
			Required: []string{"modelName", "responseText", "accuracy"},
		},
	}
}

func transcriptionResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"transcribedText": {Type: genai.TypeString, Description: "The transcribed text from the audio."},
		},
		Required: []string{"transcribedText"},
	}
}

// Helper functions

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}

func stripCodeFences(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	return strings.TrimSpace(raw)
}
