package handler

import (
	"net/http"

	"github.com/heka-app/heka-server-go/internal/safety"
)

type SafetyHandler struct{}

func NewSafetyHandler() *SafetyHandler {
	return &SafetyHandler{}
}

// GET /api/safety/resources
//
// Unauthenticated on purpose: someone in crisis should not need a login to
// reach these numbers.
func (h *SafetyHandler) Resources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"resources": safety.CrisisResources(),
	})
}
