package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/heka-app/heka-server-go/internal/auth"
	apperrors "github.com/heka-app/heka-server-go/internal/errors"
	"github.com/heka-app/heka-server-go/internal/middleware"
	"github.com/heka-app/heka-server-go/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Routes wires the auth endpoints. Register and login carry per-IP throttles;
// logout and me sit behind the access-token middleware.
func (h *AuthHandler) Routes(requireAuth, loginLimit, registerLimit func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.With(registerLimit).Post("/register", h.Register)
	r.With(loginLimit).Post("/login", h.Login)
	r.Post("/refresh", h.Refresh)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/logout", h.Logout)
		r.Get("/me", h.Me)
		r.Delete("/me", h.DeactivateMe)
	})

	return r
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Age      int    `json:"age" validate:"required,gte=16,lte=120"`
}

// POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.authService.Register(r.Context(), service.RegisterParams{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Age:      req.Age,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required"`
	DeviceID *string `json:"deviceId" validate:"omitempty,max=255"`
}

type loginResponse struct {
	User   any                `json:"user"`
	Tokens *service.TokenPair `json:"tokens"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, pair, err := h.authService.Login(r.Context(), req.Email, req.Password, tokenMetadata(r, req.DeviceID))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{User: user, Tokens: pair})
}

type refreshRequest struct {
	RefreshToken string  `json:"refreshToken" validate:"required"`
	DeviceID     *string `json:"deviceId" validate:"omitempty,max=255"`
}

// POST /api/auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	pair, err := h.authService.Refresh(r.Context(), req.RefreshToken, tokenMetadata(r, req.DeviceID))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		writeError(w, apperrors.Unauthorized("Authentication required"))
		return
	}

	if err := h.authService.Logout(r.Context(), user.ID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		writeError(w, apperrors.Unauthorized("Authentication required"))
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// DELETE /api/auth/me
func (h *AuthHandler) DeactivateMe(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		writeError(w, apperrors.Unauthorized("Authentication required"))
		return
	}

	if err := h.authService.Deactivate(r.Context(), user.ID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Account deactivated"})
}

func tokenMetadata(r *http.Request, deviceID *string) auth.TokenMetadata {
	meta := auth.TokenMetadata{DeviceID: deviceID}
	if ua := r.UserAgent(); ua != "" {
		meta.UserAgent = &ua
	}
	if ip := middleware.SubjectIP(r); ip != "" {
		meta.IPAddress = &ip
	}
	return meta
}
