package handlers

import (
	"net/http"

	"consistai-backend/internal/middleware"
	"consistai-backend/internal/models"
)

// maxMessageBody bounds a chat request; inline images arrive base64-encoded.
const maxMessageBody = 20 << 20

// SendMessage runs one chat turn for the caller's session. AI failures come
// back as a 200 with outcome "error" and the message stored in the session.
func (h *SessionHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req models.SendMessageRequest
	if !decodeJSON(w, r, h.maxBody, &req) {
		return
	}

	resp, err := h.chat.SendMessage(r.Context(), middleware.GetSessionID(r.Context()), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
