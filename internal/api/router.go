package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/codespace-operator/keycloak-demo/pkg/auth"
	"github.com/codespace-operator/keycloak-demo/pkg/common"
	"github.com/codespace-operator/keycloak-demo/pkg/rbac"
)

type Deps struct {
	Auth        auth.Manager
	Gate        *rbac.Gate
	Logger      *slog.Logger
	CORSOrigins []string
	// Routes overrides the default table, mainly for tests.
	Routes []Route
}

// NewRouter builds the HTTP handler: request id, access log, CORS and
// authentication run on every request, then each route goes through the gate.
func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Auth == nil {
		d.Auth = auth.NewAuthManagerWithProviders(nil, d.Logger)
	}
	if d.Gate == nil {
		d.Gate = rbac.NewGate(nil, d.Logger)
	}
	routes := d.Routes
	if routes == nil {
		routes = Routes()
	}

	r := chi.NewRouter()
	r.Use(common.RequestID(d.Logger))
	r.Use(common.AccessLog)
	r.Use(auth.CorsMiddleware(d.CORSOrigins))
	r.Use(auth.NewMiddleware(d.Auth, d.Logger).Authenticate)

	notFound := func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	r.Get("/healthz", healthz)
	r.Get("/readyz", readyz(d.Auth))

	for _, rt := range routes {
		r.With(d.Gate.Require(rt.RequiredRole)).Method(rt.Method, rt.Path, serve(rt.Handler))
	}

	return r
}

func serve(h func(*auth.Identity) any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, h(auth.FromRequest(r)))
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		common.LoggerFromContext(r.Context()).Error("Failed to write response", "error", err)
	}
}
