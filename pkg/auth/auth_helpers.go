package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"
)

// issuerIDFromURL creates a stable identifier from issuer URL
func issuerIDFromURL(issuer string) string {
	u, err := url.Parse(issuer)
	if err != nil {
		return hashString(issuer)
	}

	id := strings.ToLower(strings.TrimSuffix(u.Host+u.Path, "/"))
	id = strings.ReplaceAll(id, "/", "~") // keycloak.example.com~realms~prod
	id = strings.ReplaceAll(id, ":", "-") // avoid delimiter collision

	if id == "" {
		return hashString(issuer)
	}
	return id
}

// hashString creates a short hash of a string
func hashString(s string) string {
	hash := sha256.Sum256([]byte(s))
	return base64.RawURLEncoding.EncodeToString(hash[:])[:16]
}

// ExtractTokenFromRequest returns the bearer token from the Authorization
// header, or from the access_token query parameter when allowed. It returns ""
// when no credential is present.
func ExtractTokenFromRequest(r *http.Request, allowURLParam bool) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
			return strings.TrimSpace(auth[7:])
		}
	}

	if allowURLParam {
		if token := r.URL.Query().Get("access_token"); token != "" {
			return token
		}
	}

	return ""
}

// CorsMiddleware adds CORS headers with credentials support for allowed origins
// and answers preflight requests.
func CorsMiddleware(allowList []string) func(http.Handler) http.Handler {
	set := map[string]struct{}{}
	for _, o := range allowList {
		set[o] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if _, ok := set[origin]; ok {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}
			w.Header().Add("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Expose-Headers", "X-Request-Id")

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
