package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/taskmanager/taskmanager-go/internal/model"
)

type contextKey string

const identityKey contextKey = "identity"

// TokenValidator resolves a bearer access token to a caller identity.
type TokenValidator interface {
	Validate(token string) (model.Identity, error)
}

// JWTAuth returns middleware that validates a Bearer token from the
// Authorization header. Requests without a valid access token are rejected
// with 401 before reaching the handler.
func JWTAuth(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, "authentication credentials were not provided")
				return
			}

			scheme, token, found := strings.Cut(authHeader, " ")
			token = strings.TrimSpace(token)
			if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
				unauthorized(w, "invalid authorization format")
				return
			}

			id, err := tokens.Validate(token)
			if err != nil {
				unauthorized(w, "token is invalid or expired")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// WithIdentity returns a copy of ctx carrying the caller identity.
func WithIdentity(ctx context.Context, id model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext extracts the authenticated caller from the request context.
func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	id, ok := ctx.Value(identityKey).(model.Identity)
	return id, ok
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	writeJSONError(w, http.StatusUnauthorized, msg)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
