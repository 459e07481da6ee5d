package handler

import (
	"net/http"

	"github.com/taskmanager/taskmanager-go/internal/model"
	"github.com/taskmanager/taskmanager-go/internal/service"
)

// TaskHandler handles HTTP requests for task operations.
type TaskHandler struct {
	service *service.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(svc *service.TaskService) *TaskHandler {
	return &TaskHandler{service: svc}
}

// HandleList handles GET /api/tasks/ requests.
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	tasks, err := h.service.List(r.Context(), caller)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tasks)
}

// HandleCreate handles POST /api/tasks/ requests.
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	var req model.TaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	task, err := h.service.Create(r.Context(), caller, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

// HandleGet handles GET /api/tasks/{id}/ requests.
func (h *TaskHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	task, err := h.service.Get(r.Context(), caller, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// HandleUpdate handles PUT and PATCH /api/tasks/{id}/ requests.
func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req model.TaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	task, err := h.service.Update(r.Context(), caller, id, req, r.Method == http.MethodPatch)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// HandleDelete handles DELETE /api/tasks/{id}/ requests.
func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), caller, id); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
