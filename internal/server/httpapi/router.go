// Package httpapi serves the session endpoints over REST.
package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/gymsession/internal/api"
	"github.com/dmitrijs2005/gymsession/internal/logging"
	"github.com/dmitrijs2005/gymsession/internal/server/users"
	"github.com/go-chi/chi/v5"
)

// UserService is the part of users.Service the handlers need.
type UserService interface {
	SignIn(ctx context.Context, email, password string) (*users.User, string, error)
	Update(ctx context.Context, userID string, in users.UpdateInput) (*users.User, error)
	Authenticate(token string) (string, error)
}

// Handler binds the HTTP routes to the user service.
type Handler struct {
	users  UserService
	logger logging.Logger
}

func NewHandler(us UserService, l logging.Logger) *Handler {
	return &Handler{users: us, logger: l.With("module", "http_api")}
}

// NewRouter registers the routes and the middleware stack.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(h.recoverMiddleware)
	r.Use(h.loggingMiddleware)

	r.Get(api.PathPing, h.ping)
	r.Post(api.PathSessions, h.signIn)

	r.Group(func(r chi.Router) {
		r.Use(h.authMiddleware)
		r.Put(api.PathUsers, h.updateUser)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}
