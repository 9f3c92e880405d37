package handlers

import (
	"net/http"

	"consistai-backend/internal/models"
)

type PersonaHandler struct {
	personas []models.PersonaSpec
}

func NewPersonaHandler(personas []models.PersonaSpec) *PersonaHandler {
	return &PersonaHandler{personas: personas}
}

func (h *PersonaHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"personas": h.personas})
}
