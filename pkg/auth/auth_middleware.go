package auth

import (
	"errors"
	"log/slog"
	"net/http"
)

// Middleware provides HTTP middleware functions
type Middleware struct {
	authManager Manager
	logger      *slog.Logger
}

// NewMiddleware creates authentication middleware
func NewMiddleware(am Manager, logger *slog.Logger) *Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &Middleware{authManager: am, logger: logger.With("component", "auth-middleware")}
}

// Authenticate attaches the caller's identity when a valid credential is
// presented. Missing or rejected credentials leave the request anonymous;
// authorization decides what an anonymous caller may reach.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := m.authManager.ValidateRequest(r)
		switch {
		case err == nil:
			r = r.WithContext(WithIdentity(r.Context(), id))
		case errors.Is(err, ErrNoToken):
		default:
			m.logger.Debug("Authentication failed", "error", err, "path", r.URL.Path)
		}
		next.ServeHTTP(w, r)
	})
}
