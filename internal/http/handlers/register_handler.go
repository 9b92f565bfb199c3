package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/covenantconf/registration-api/internal/domain"
	"github.com/covenantconf/registration-api/internal/http/response"
)

// Register handles the public registration submission.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var input domain.RegistrationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	reg, confirmation, err := h.registrations.Submit(r.Context(), &input)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, map[string]any{
		"registration": reg,
		"confirmation": confirmation,
	})
}

// RegistrationStatus reports the gate decision plus the live count.
func (h *Handlers) RegistrationStatus(w http.ResponseWriter, r *http.Request) {
	report, err := h.registrations.Status(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, report)
}
