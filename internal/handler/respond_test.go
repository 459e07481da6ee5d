package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/taskmanager/taskmanager-go/internal/crypto"
	"github.com/taskmanager/taskmanager-go/internal/service"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"validation", &service.ValidationError{Field: "title", Message: "this field is required"}, http.StatusBadRequest, "this field is required"},
		{"bad credentials", service.ErrInvalidCredentials, http.StatusUnauthorized, service.ErrInvalidCredentials.Error()},
		{"invalid token", crypto.ErrInvalidToken, http.StatusUnauthorized, "token is invalid or expired"},
		{"expired token", fmt.Errorf("refresh: %w", crypto.ErrExpiredToken), http.StatusUnauthorized, "token is invalid or expired"},
		{"unauthenticated", service.ErrUnauthenticated, http.StatusUnauthorized, service.ErrUnauthenticated.Error()},
		{"forbidden", service.ErrForbidden, http.StatusForbidden, service.ErrForbidden.Error()},
		{"deletion disabled", service.ErrUserDeletionDisabled, http.StatusForbidden, service.ErrUserDeletionDisabled.Error()},
		{"not found", service.ErrNotFound, http.StatusNotFound, service.ErrNotFound.Error()},
		{"unknown", errors.New("connection refused"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decoding body: %v", err)
			}
			if body["error"] != tt.wantMsg {
				t.Errorf("error = %q, want %q", body["error"], tt.wantMsg)
			}
		})
	}
}

func TestWriteError_ValidationField(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, httptest.NewRequest(http.MethodPost, "/", nil), &service.ValidationError{Field: "status", Message: "invalid choice"})

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["field"] != "status" {
		t.Errorf("field = %q, want %q", body["field"], "status")
	}
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantOK     bool
		wantStatus int
	}{
		{"valid", `{"title":"T1"}`, true, http.StatusOK},
		{"malformed", `{"title":`, false, http.StatusBadRequest},
		{"empty", ``, false, http.StatusBadRequest},
		{"too large", `{"title":"` + strings.Repeat("a", maxBodyBytes) + `"}`, false, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			var v struct {
				Title string `json:"title"`
			}
			ok := decodeJSON(rec, req, &v)

			if ok != tt.wantOK {
				t.Fatalf("decodeJSON() = %v, want %v", ok, tt.wantOK)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestPathID(t *testing.T) {
	tests := []struct {
		param  string
		wantID int64
		wantOK bool
	}{
		{"42", 42, true},
		{"abc", 0, false},
		{"0", 0, false},
		{"-3", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.param)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
			rec := httptest.NewRecorder()

			id, ok := pathID(rec, req)
			if ok != tt.wantOK || id != tt.wantID {
				t.Errorf("pathID() = (%d, %v), want (%d, %v)", id, ok, tt.wantID, tt.wantOK)
			}
			if !ok && rec.Code != http.StatusNotFound {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
			}
		})
	}
}

func TestCallerFrom_MissingIdentity(t *testing.T) {
	rec := httptest.NewRecorder()
	if _, ok := callerFrom(rec, httptest.NewRequest(http.MethodGet, "/", nil)); ok {
		t.Fatal("callerFrom() ok = true without identity")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
