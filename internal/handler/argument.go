package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/heka-app/heka-server-go/internal/errors"
	"github.com/heka-app/heka-server-go/internal/middleware"
	"github.com/heka-app/heka-server-go/internal/model"
	"github.com/heka-app/heka-server-go/internal/service"
)

type ArgumentHandler struct {
	argumentService    *service.ArgumentService
	perspectiveService *service.PerspectiveService
}

func NewArgumentHandler(argumentService *service.ArgumentService, perspectiveService *service.PerspectiveService) *ArgumentHandler {
	return &ArgumentHandler{
		argumentService:    argumentService,
		perspectiveService: perspectiveService,
	}
}

func (h *ArgumentHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{argumentID}", h.Get)
	r.Post("/{argumentID}/resolve", h.Resolve)
	r.Post("/{argumentID}/archive", h.Archive)
	r.Post("/{argumentID}/perspectives", h.SubmitPerspective)
	r.Get("/{argumentID}/perspectives", h.ListPerspectives)

	return r
}

type createArgumentRequest struct {
	Title    string `json:"title" validate:"required,min=1,max=255"`
	Category string `json:"category" validate:"required"`
	Priority string `json:"priority" validate:"omitempty"`
}

// POST /api/arguments
func (h *ArgumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		writeError(w, apperrors.Unauthorized("Authentication required"))
		return
	}

	var req createArgumentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	argument, err := h.argumentService.Create(r.Context(), user.ID, service.CreateArgumentParams{
		Title:    req.Title,
		Category: model.ArgumentCategory(req.Category),
		Priority: model.ArgumentPriority(req.Priority),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, argument)
}

// GET /api/arguments
func (h *ArgumentHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		writeError(w, apperrors.Unauthorized("Authentication required"))
		return
	}

	arguments, err := h.argumentService.List(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, arguments)
}

// GET /api/arguments/{argumentID}
func (h *ArgumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		writeError(w, apperrors.Unauthorized("Authentication required"))
		return
	}

	argument, err := h.argumentService.Get(r.Context(), user.ID, chi.URLParam(r, "argumentID"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, argument)
}

// POST /api/arguments/{argumentID}/resolve
func (h *ArgumentHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		writeError(w, apperrors.Unauthorized("Authentication required"))
		return
	}

	argument, err := h.argumentService.Resolve(r.Context(), user.ID, chi.URLParam(r, "argumentID"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, argument)
}

// POST /api/arguments/{argumentID}/archive
func (h *ArgumentHandler) Archive(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		writeError(w, apperrors.Unauthorized("Authentication required"))
		return
	}

	argument, err := h.argumentService.Archive(r.Context(), user.ID, chi.URLParam(r, "argumentID"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, argument)
}

type submitPerspectiveRequest struct {
	Content string `json:"content" validate:"required,min=10,max=5000"`
}

// POST /api/arguments/{argumentID}/perspectives
func (h *ArgumentHandler) SubmitPerspective(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		writeError(w, apperrors.Unauthorized("Authentication required"))
		return
	}

	var req submitPerspectiveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	perspective, err := h.perspectiveService.Submit(r.Context(), user.ID, chi.URLParam(r, "argumentID"), req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, perspective)
}

// GET /api/arguments/{argumentID}/perspectives
func (h *ArgumentHandler) ListPerspectives(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		writeError(w, apperrors.Unauthorized("Authentication required"))
		return
	}

	perspectives, err := h.perspectiveService.List(r.Context(), user.ID, chi.URLParam(r, "argumentID"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, perspectives)
}
