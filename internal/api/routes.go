package api

import (
	"net/http"

	"github.com/codespace-operator/keycloak-demo/pkg/auth"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Route binds a path to a handler and the role it requires. An empty
// RequiredRole marks the route public.
type Route struct {
	Method       string
	Path         string
	RequiredRole string
	Handler      func(*auth.Identity) any
}

// Routes returns the API route table.
func Routes() []Route {
	return []Route{
		{Method: http.MethodGet, Path: "/api/public/hello", Handler: PublicHello},
		{Method: http.MethodGet, Path: "/api/user/profile", RequiredRole: RoleUser, Handler: UserProfile},
		{Method: http.MethodGet, Path: "/api/admin/dashboard", RequiredRole: RoleAdmin, Handler: AdminDashboard},
	}
}
