package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/heka-app/heka-server-go/internal/errors"
	"github.com/heka-app/heka-server-go/internal/middleware"
	"github.com/heka-app/heka-server-go/internal/service"
)

type CoupleHandler struct {
	coupleService *service.CoupleService
}

func NewCoupleHandler(coupleService *service.CoupleService) *CoupleHandler {
	return &CoupleHandler{coupleService: coupleService}
}

func (h *CoupleHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Post("/join", h.Join)
	r.Get("/me", h.Me)

	return r
}

// POST /api/couples
func (h *CoupleHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		writeError(w, apperrors.Unauthorized("Authentication required"))
		return
	}

	result, err := h.coupleService.Create(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

type joinRequest struct {
	Code string `json:"code" validate:"required,min=8,max=16"`
}

// POST /api/couples/join
func (h *CoupleHandler) Join(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		writeError(w, apperrors.Unauthorized("Authentication required"))
		return
	}

	var req joinRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	couple, err := h.coupleService.Join(r.Context(), user.ID, req.Code)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, couple)
}

// GET /api/couples/me
func (h *CoupleHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		writeError(w, apperrors.Unauthorized("Authentication required"))
		return
	}

	couple, err := h.coupleService.Get(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, couple)
}
