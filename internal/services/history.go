package services

import (
	"fmt"
	"strings"

	"consistai-backend/internal/models"
)

const (
	historyWindow           = 4
	historyNoContextMessage = "No suitable conversation history context to display."
)

// BuildHistoryContext renders the last few chat turns as prompt context, one
// line per message. Older turns are dropped.
func BuildHistoryContext(messages []models.ChatMessage) string {
	if len(messages) == 0 {
		return historyBeginningSentinel
	}

	recent := messages
	if len(recent) > historyWindow {
		recent = recent[len(recent)-historyWindow:]
	}

	lines := make([]string, 0, len(recent))
	for _, msg := range recent {
		if line, ok := historyLine(msg); ok {
			lines = append(lines, line)
		}
	}

	rendered := strings.Join(lines, "\n")
	if strings.TrimSpace(rendered) == "" {
		return historyNoContextMessage
	}
	return rendered
}

func historyLine(msg models.ChatMessage) (string, bool) {
	switch msg.Role {
	case models.RoleUser:
		switch {
		case msg.Content.Payload != nil:
			line := "User: " + msg.Content.Payload.Text
			if msg.Content.Payload.ImageDataURI != "" {
				line += " [Image Attached]"
			}
			return line, true
		case msg.Content.Ranked != nil:
			return "User: [Unsupported message format]", true
		default:
			return "User: " + msg.Content.Text, true
		}

	case models.RoleAssistant:
		switch msg.Type {
		case models.MessageTypeText:
			return "Assistant: " + msg.Content.Text, true
		case models.MessageTypeSingleModelResponse:
			if msg.Content.Ranked == nil {
				return "Assistant: (Received a message with an unknown type)", true
			}
			return fmt.Sprintf("Assistant (recommended %s): %s", msg.Content.Ranked.ModelName, msg.Content.Ranked.ResponseText), true
		case models.MessageTypeError:
			return fmt.Sprintf("Assistant: (System note: I previously encountered an error: \"%s\")", msg.Content.Text), true
		default:
			return "Assistant: (Received a message with an unknown type)", true
		}
	}

	return "", false
}
