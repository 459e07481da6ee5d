package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/taskmanager/taskmanager-go/internal/model"
	"github.com/taskmanager/taskmanager-go/internal/service"
)

// UserHandler handles HTTP requests for user records.
type UserHandler struct {
	service *service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{service: svc}
}

// HandleList handles GET /api/users/ requests.
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	users, err := h.service.List(r.Context(), caller)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

// HandleGet handles GET /api/users/{id}/ requests.
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	user, err := h.service.Get(r.Context(), caller, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandleUpdate handles PUT and PATCH /api/users/{id}/ requests.
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req model.UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.service.Update(r.Context(), caller, id, req, r.Method == http.MethodPatch)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandleDelete handles DELETE /api/users/{id}/ requests. It always answers 403.
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	// A malformed id gets the same 403 as any other.
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	writeError(w, r, h.service.Delete(r.Context(), caller, id))
}
