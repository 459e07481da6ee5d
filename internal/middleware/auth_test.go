package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/taskmanager/taskmanager-go/internal/crypto"
	"github.com/taskmanager/taskmanager-go/internal/model"
)

func TestJWTAuth(t *testing.T) {
	issuer := crypto.NewTokenIssuer("test-secret", time.Minute, time.Hour)
	pair, err := issuer.Issue(&model.User{ID: 7, Username: "alice", Role: model.RoleStandard})
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}

	var got model.Identity
	var reached bool
	handler := JWTAuth(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		got, _ = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "valid bearer", header: "Bearer " + pair.Access, wantStatus: http.StatusNoContent},
		{name: "lowercase scheme", header: "bearer " + pair.Access, wantStatus: http.StatusNoContent},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz", wantStatus: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer ", wantStatus: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer abc.def.ghi", wantStatus: http.StatusUnauthorized},
		{name: "refresh token", header: "Bearer " + pair.Refresh, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached = false
			got = model.Identity{}

			req := httptest.NewRequest(http.MethodGet, "/api/tasks/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusUnauthorized {
				if reached {
					t.Error("handler reached on unauthenticated request")
				}
				if rec.Header().Get("WWW-Authenticate") == "" {
					t.Error("missing WWW-Authenticate header")
				}
				return
			}
			if got.UserID != 7 || got.Username != "alice" {
				t.Errorf("identity = %+v, want user 7/alice", got)
			}
		})
	}
}

func TestIdentityFromContextMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := IdentityFromContext(req.Context()); ok {
		t.Error("IdentityFromContext() ok = true on bare context")
	}
}
