package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

type MessageType string

const (
	MessageTypeText                MessageType = "text"
	MessageTypeSingleModelResponse MessageType = "single_model_response"
	MessageTypeError               MessageType = "error"
)

// UserMessagePayload is the content of a user turn that carries an image.
type UserMessagePayload struct {
	Text         string `json:"text"`
	ImageDataURI string `json:"image_data_uri,omitempty"`
}

// RankedResponseItem is one persona's simulated answer and its score.
type RankedResponseItem struct {
	ModelName    string  `json:"model_name"`
	ResponseText string  `json:"response_text"`
	Accuracy     float64 `json:"accuracy"` // 0.0 - 1.0
	Reason       string  `json:"reason,omitempty"`
}

// MessageContent holds exactly one of plain text, a user payload or a ranked
// response. It is encoded as the bare string or object.
type MessageContent struct {
	Text    string
	Payload *UserMessagePayload
	Ranked  *RankedResponseItem
}

func TextContent(text string) MessageContent {
	return MessageContent{Text: text}
}

func PayloadContent(p UserMessagePayload) MessageContent {
	return MessageContent{Payload: &p}
}

func RankedContent(item RankedResponseItem) MessageContent {
	return MessageContent{Ranked: &item}
}

func (c MessageContent) MarshalJSON() ([]byte, error) {
	switch {
	case c.Ranked != nil:
		return json.Marshal(c.Ranked)
	case c.Payload != nil:
		return json.Marshal(c.Payload)
	default:
		return json.Marshal(c.Text)
	}
}

func (c *MessageContent) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*c = MessageContent{}

	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &c.Text)
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return fmt.Errorf("message content must be a string or an object: %w", err)
	}

	if _, ok := keys["model_name"]; ok {
		var item RankedResponseItem
		if err := json.Unmarshal(data, &item); err != nil {
			return err
		}
		c.Ranked = &item
		return nil
	}
	if _, ok := keys["text"]; ok {
		var p UserMessagePayload
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		c.Payload = &p
		return nil
	}

	return fmt.Errorf("unrecognized message content object")
}

// ChatMessage is immutable once appended to a session.
type ChatMessage struct {
	ID        uuid.UUID      `json:"id"`
	Role      MessageRole    `json:"role"`
	Type      MessageType    `json:"type"`
	Content   MessageContent `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
}

// TurnOutcome is how a single chat turn ended.
type TurnOutcome string

const (
	OutcomeSuccess            TurnOutcome = "success"
	OutcomeNoSuitableResponse TurnOutcome = "no_suitable_response"
	OutcomeError              TurnOutcome = "error"
)

// Notice mirrors a transient UI notification.
type Notice struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Variant     string `json:"variant,omitempty"` // "" or "destructive"
}

// SendMessageRequest is the payload sent to the chat endpoint.
type SendMessageRequest struct {
	Text          string `json:"text"`
	ImageDataURI  string `json:"image_data_uri,omitempty"`
	InputLanguage string `json:"input_language,omitempty"`
}

// SendMessageResponse is the result of one chat turn.
type SendMessageResponse struct {
	Session Session     `json:"session"`
	Reply   ChatMessage `json:"reply"`
	Outcome TurnOutcome `json:"outcome"`
	Notice  *Notice     `json:"notice,omitempty"`
}

type CreateSessionResponse struct {
	Session   Session `json:"session"`
	Token     string  `json:"token"`
	ExpiresIn int     `json:"expires_in"`
}

type ResetSessionResponse struct {
	Session Session `json:"session"`
	Notice  Notice  `json:"notice"`
}

type TranscriptionRequest struct {
	AudioDataURI string `json:"audio_data_uri" validate:"required"`
}

type TranscriptionResponse struct {
	TranscribedText string  `json:"transcribed_text"`
	Notice          *Notice `json:"notice,omitempty"`
}
