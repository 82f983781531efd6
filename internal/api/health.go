package api

import (
	"net/http"

	"github.com/codespace-operator/keycloak-demo/pkg/auth"
)

type healthResponse struct {
	Status    string   `json:"status"`
	Providers []string `json:"providers,omitempty"`
}

func healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, healthResponse{Status: "ok"})
}

// readyz reports ready once at least one authentication provider is available.
func readyz(am auth.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providers := am.ListProviders()
		if len(providers) == 0 {
			writeJSON(w, r, http.StatusServiceUnavailable, healthResponse{Status: "no authentication provider"})
			return
		}
		writeJSON(w, r, http.StatusOK, healthResponse{Status: "ok", Providers: providers})
	}
}
