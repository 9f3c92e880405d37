package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscribe_Unavailable(t *testing.T) {
	backend := &stubBackend{available: false}
	text, ok := NewTranscriptionService(backend).Transcribe(context.Background(), dataURI("audio/webm", []byte("abc")))

	assert.False(t, ok)
	assert.Empty(t, text)
	assert.Zero(t, backend.calls)
}

func TestTranscribe_ReturnsTranscript(t *testing.T) {
	backend := &stubBackend{available: true, reply: `{"transcribedText":"hello world"}`}
	text, ok := NewTranscriptionService(backend).Transcribe(context.Background(), dataURI("audio/webm;codecs=opus", []byte("abc")))

	require.True(t, ok)
	assert.Equal(t, "hello world", text)

	require.Len(t, backend.parts, 2)
	blob, isBlob := backend.parts[1].(genai.Blob)
	require.True(t, isBlob)
	assert.Equal(t, "audio/webm", blob.MIMEType)
	assert.Contains(t, backend.promptText(), "Return ONLY the transcribed text")
}

func TestTranscribe_MissingFieldYieldsEmptyString(t *testing.T) {
	for _, raw := range []string{`{}`, `null`, `{"transcribedText": 5}`, `not json`} {
		backend := &stubBackend{available: true, reply: raw}
		text, ok := NewTranscriptionService(backend).Transcribe(context.Background(), dataURI("audio/wav", []byte("abc")))

		assert.True(t, ok, raw)
		assert.Empty(t, text, raw)
	}
}

func TestTranscribe_FailuresAreNotErrors(t *testing.T) {
	backend := &stubBackend{available: true, err: errors.New("quota")}
	_, ok := NewTranscriptionService(backend).Transcribe(context.Background(), dataURI("audio/wav", []byte("abc")))
	assert.False(t, ok)

	backend = &stubBackend{available: true}
	_, ok = NewTranscriptionService(backend).Transcribe(context.Background(), dataURI("image/png", []byte("abc")))
	assert.False(t, ok)
	assert.Zero(t, backend.calls)
}

func TestDecodeMediaDataURI(t *testing.T) {
	media, err := decodeMediaDataURI(dataURI("image/jpeg", []byte{1, 2, 3}), "image")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", media.MIMEType)
	assert.Equal(t, []byte{1, 2, 3}, media.Data)

	_, err = decodeMediaDataURI("https://example.com/cat.png", "image")
	assert.Error(t, err)

	_, err = decodeMediaDataURI("data:text/plain,hello", "image")
	assert.Error(t, err)

	_, err = decodeMediaDataURI(dataURI("audio/wav", []byte{1}), "image")
	assert.Error(t, err)
}
