package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/heka-app/heka-server-go/internal/errors"
	"github.com/heka-app/heka-server-go/internal/middleware"
	"github.com/heka-app/heka-server-go/internal/service"
)

type MediationHandler struct {
	perspectiveService *service.PerspectiveService
}

func NewMediationHandler(perspectiveService *service.PerspectiveService) *MediationHandler {
	return &MediationHandler{perspectiveService: perspectiveService}
}

// Routes carries the analyze throttle: analysis spends provider money, the
// read path does not.
func (h *MediationHandler) Routes(analyzeLimit func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.With(analyzeLimit).Post("/arguments/{argumentID}/analyze", h.Analyze)
	r.Get("/arguments/{argumentID}/insights", h.Insights)

	return r
}

// POST /api/ai/arguments/{argumentID}/analyze
func (h *MediationHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		writeError(w, apperrors.Unauthorized("Authentication required"))
		return
	}

	result, err := h.perspectiveService.Analyze(r.Context(), user.ID, chi.URLParam(r, "argumentID"))
	if err != nil {
		writeError(w, err)
		return
	}

	response := map[string]any{"insight": result.Insight}
	if result.Safety != nil {
		response["safety"] = result.Safety
	}

	writeJSON(w, http.StatusCreated, response)
}

// GET /api/ai/arguments/{argumentID}/insights
func (h *MediationHandler) Insights(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		writeError(w, apperrors.Unauthorized("Authentication required"))
		return
	}

	insight, err := h.perspectiveService.Insight(r.Context(), user.ID, chi.URLParam(r, "argumentID"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, insight)
}
