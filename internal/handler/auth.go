package handler

import (
	"net/http"

	"github.com/taskmanager/taskmanager-go/internal/model"
	"github.com/taskmanager/taskmanager-go/internal/service"
)

// AuthHandler handles HTTP requests for registration and tokens.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// HandleRegister handles POST /api/users/ requests.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req model.CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// HandleToken handles POST /api/token/ requests.
func (h *AuthHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleRefresh handles POST /api/token/refresh/ requests.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req model.RefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Refresh(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
