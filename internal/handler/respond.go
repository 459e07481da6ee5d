package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/taskmanager/taskmanager-go/internal/crypto"
	"github.com/taskmanager/taskmanager-go/internal/middleware"
	"github.com/taskmanager/taskmanager-go/internal/model"
	"github.com/taskmanager/taskmanager-go/internal/service"
)

const maxBodyBytes = 1 << 20 // 1MB

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func errorResponse(msg string) map[string]string {
	return map[string]string{"error": msg}
}

// decodeJSON reads the request body into v. On failure it writes the error
// response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse("request body too large"))
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return false
	}
	return true
}

// callerFrom returns the identity placed on the context by middleware.JWTAuth.
func callerFrom(w http.ResponseWriter, r *http.Request) (model.Identity, bool) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, service.ErrUnauthenticated)
	}
	return id, ok
}

// pathID parses the {id} URL parameter. A malformed id is reported as not
// found, the same as an id that does not exist.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, service.ErrNotFound)
		return 0, false
	}
	return id, true
}

// writeError maps service and token errors to HTTP responses. Unknown errors
// become a bare 500 and are logged with their cause.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *service.ValidationError

	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": ve.Message, "field": ve.Field})
	case errors.Is(err, service.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse(err.Error()))
	case errors.Is(err, crypto.ErrInvalidToken), errors.Is(err, crypto.ErrExpiredToken):
		writeJSON(w, http.StatusUnauthorized, errorResponse("token is invalid or expired"))
	case errors.Is(err, service.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, errorResponse(err.Error()))
	case errors.Is(err, service.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
	default:
		slog.Error("unhandled error",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", chimw.GetReqID(r.Context()),
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
	}
}

// HandleHealth answers liveness probes.
func HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// NotFound is the router's fallback for unknown paths.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse("not found"))
}

// MethodNotAllowed is the router's fallback for known paths with the wrong verb.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse("method "+r.Method+" not allowed"))
}
