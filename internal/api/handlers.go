package api

import "github.com/codespace-operator/keycloak-demo/pkg/auth"

const (
	MsgPublicHello    = "Ez egy publikus endpoint, nincs szükség bejelentkezésre"
	MsgUserProfile    = "Sikeres hitelesítés!"
	MsgAdminDashboard = "Admin dashboard - csak ADMIN role-al elérhető"
)

type PublicMessage struct {
	Message string `json:"message"`
}

type ProfileResponse struct {
	Message     string   `json:"message"`
	Username    string   `json:"username"`
	Authorities []string `json:"authorities"`
}

type AdminResponse struct {
	Message string `json:"message"`
	Admin   string `json:"admin"`
}

// PublicHello needs no identity.
func PublicHello(*auth.Identity) any {
	return PublicMessage{Message: MsgPublicHello}
}

// UserProfile echoes the caller's name and granted roles. The gate guarantees id is set.
func UserProfile(id *auth.Identity) any {
	authorities := id.Roles
	if authorities == nil {
		authorities = []string{}
	}
	return ProfileResponse{
		Message:     MsgUserProfile,
		Username:    id.Subject,
		Authorities: authorities,
	}
}

func AdminDashboard(id *auth.Identity) any {
	return AdminResponse{Message: MsgAdminDashboard, Admin: id.Subject}
}
