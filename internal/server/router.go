package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/taskmanager/taskmanager-go/internal/handler"
	"github.com/taskmanager/taskmanager-go/internal/middleware"
)

const (
	usersPath        = "/api/users"
	tasksPath        = "/api/tasks"
	tokenPath        = "/api/token"
	tokenRefreshPath = "/api/token/refresh"
	healthPath       = "/health"

	paramID = "id"
)

// Deps are the collaborators the router dispatches to.
type Deps struct {
	Auth  *handler.AuthHandler
	Users *handler.UserHandler
	Tasks *handler.TaskHandler

	// Tokens authenticates bearer tokens on every protected route.
	Tokens middleware.TokenValidator

	// RateLimit guards the unauthenticated endpoints. Nil disables limiting.
	RateLimit func(http.Handler) http.Handler
}

// NewRouter builds the HTTP handler for the whole API.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.StripSlashes)

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	r.Get(healthPath, handler.HandleHealth)

	r.Group(func(r chi.Router) {
		if d.RateLimit != nil {
			r.Use(d.RateLimit)
		}
		r.Post(usersPath, d.Auth.HandleRegister)
		r.Post(tokenPath, d.Auth.HandleToken)
		r.Post(tokenRefreshPath, d.Auth.HandleRefresh)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(d.Tokens))
		configureUserRoutes(r, d.Users)
		configureTaskRoutes(r, d.Tasks)
	})

	return r
}

func withParam(base string) string {
	return base + "/{" + paramID + "}"
}

func configureUserRoutes(r chi.Router, h *handler.UserHandler) {
	r.Get(usersPath, h.HandleList)

	item := withParam(usersPath)
	r.Get(item, h.HandleGet)
	r.Put(item, h.HandleUpdate)
	r.Patch(item, h.HandleUpdate)
	r.Delete(item, h.HandleDelete)
}

func configureTaskRoutes(r chi.Router, h *handler.TaskHandler) {
	r.Get(tasksPath, h.HandleList)
	r.Post(tasksPath, h.HandleCreate)

	item := withParam(tasksPath)
	r.Get(item, h.HandleGet)
	r.Put(item, h.HandleUpdate)
	r.Patch(item, h.HandleUpdate)
	r.Delete(item, h.HandleDelete)
}
