package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrNoToken      = errors.New("no token provided")
)

// RoleClaim is the Keycloak {"roles": [...]} shape used by realm_access and
// resource_access entries.
type RoleClaim struct {
	Roles []string `json:"roles,omitempty"`
}

// TokenClaims is the subset of a Keycloak access token we read. It decodes both
// go-oidc verified payloads and golang-jwt parsed tokens.
type TokenClaims struct {
	jwt.RegisteredClaims
	PreferredUsername string               `json:"preferred_username,omitempty"`
	Name              string               `json:"name,omitempty"`
	Email             string               `json:"email,omitempty"`
	RealmAccess       *RoleClaim           `json:"realm_access,omitempty"`
	ResourceAccess    map[string]RoleClaim `json:"resource_access,omitempty"`
	Roles             []string             `json:"roles,omitempty"`
	Groups            []string             `json:"groups,omitempty"`
}

// Username picks the display name the same way the SPA does:
// preferred_username, then name, then email, then sub.
func (c *TokenClaims) Username() string {
	for _, v := range []string{c.PreferredUsername, c.Name, c.Email, c.Subject} {
		if v != "" {
			return v
		}
	}
	return ""
}

// AllRoles merges realm roles, client roles for clientID and plain roles.
// Groups are used only when no role claim is present.
func (c *TokenClaims) AllRoles(clientID string) []string {
	var roles []string
	if c.RealmAccess != nil {
		roles = append(roles, c.RealmAccess.Roles...)
	}
	if clientID != "" {
		if ra, ok := c.ResourceAccess[clientID]; ok {
			roles = append(roles, ra.Roles...)
		}
	}
	roles = append(roles, c.Roles...)
	if len(roles) == 0 {
		roles = append(roles, c.Groups...)
	}
	return NormalizeRoles(roles)
}

// Identity maps the claims to an Identity for the given provider.
func (c *TokenClaims) Identity(provider, clientID string) *Identity {
	id := &Identity{
		Subject:  c.Username(),
		ID:       c.Subject,
		Roles:    c.AllRoles(clientID),
		Email:    c.Email,
		Name:     c.Name,
		Provider: provider,
	}
	if c.IssuedAt != nil {
		id.IssuedAt = c.IssuedAt.Unix()
	}
	if c.ExpiresAt != nil {
		id.ExpiresAt = c.ExpiresAt.Unix()
	}
	return id
}
