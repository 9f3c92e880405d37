package handlers

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"

	"consistai-backend/internal/models"
)

const maxAudioBody = 25 << 20

type transcriber interface {
	Transcribe(ctx context.Context, audioDataURI string) (string, bool)
}

type TranscriptionHandler struct {
	transcriber transcriber
	validate    *validator.Validate
	maxBody     int64
}

func NewTranscriptionHandler(t transcriber) *TranscriptionHandler {
	return &TranscriptionHandler{transcriber: t, validate: validator.New(), maxBody: maxAudioBody}
}

func (h *TranscriptionHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	var req models.TranscriptionRequest
	if !decodeJSON(w, r, h.maxBody, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"audio_data_uri": "Audio data is required"}, r))
		return
	}

	text, ok := h.transcriber.Transcribe(r.Context(), req.AudioDataURI)
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, errorResp("UNAVAILABLE", "Transcription is not available right now", r))
		return
	}

	resp := models.TranscriptionResponse{TranscribedText: text}
	if text == "" {
		resp.Notice = &models.Notice{
			Title:       "Transcription Empty",
			Description: "No speech could be recognised in the recording.",
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
