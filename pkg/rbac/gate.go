package rbac

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"

	"github.com/codespace-operator/keycloak-demo/pkg/auth"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

// Authorize decides whether a caller may reach a route requiring role.
// An empty role marks a public route. The check is exact membership.
func Authorize(required string, id *auth.Identity) error {
	if required == "" {
		return nil
	}
	if id == nil {
		return ErrUnauthenticated
	}
	if !slices.Contains(id.Roles, required) {
		return ErrForbidden
	}
	return nil
}

// RoleHierarchy expands granted roles with the roles they imply.
type RoleHierarchy interface {
	Expand(roles []string) ([]string, error)
}

// Gate is the single authorization chokepoint applied to every routed handler.
type Gate struct {
	hierarchy RoleHierarchy
	logger    *slog.Logger
}

// NewGate creates a gate. A nil hierarchy keeps role checks exact.
func NewGate(hierarchy RoleHierarchy, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{hierarchy: hierarchy, logger: logger.With("component", "rbac-gate")}
}

// Check applies Authorize after expanding the identity's roles through the
// hierarchy. The identity itself is not modified.
func (g *Gate) Check(required string, id *auth.Identity) error {
	if required == "" || id == nil || g.hierarchy == nil {
		return Authorize(required, id)
	}

	roles, err := g.hierarchy.Expand(id.Roles)
	if err != nil {
		g.logger.Error("Role expansion failed", "error", err, "subject", id.Subject)
		return ErrForbidden
	}
	expanded := *id
	expanded.Roles = roles
	return Authorize(required, &expanded)
}

// Require returns middleware that admits the request only when Check passes.
// Rejections are written here and the wrapped handler never runs.
func (g *Gate) Require(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := auth.FromRequest(r)
			switch err := g.Check(role, id); {
			case err == nil:
				next.ServeHTTP(w, r)
			case errors.Is(err, ErrUnauthenticated):
				g.logger.Debug("Rejected unauthenticated request", "path", r.URL.Path, "required", role)
				w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
			default:
				g.logger.Debug("RBAC access denied",
					"subject", id.Subject,
					"roles", id.Roles,
					"required", role,
					"path", r.URL.Path)
				http.Error(w, "forbidden", http.StatusForbidden)
			}
		})
	}
}
