package auth

import (
	"context"
	"net/http"
	"slices"

	"github.com/codespace-operator/keycloak-demo/pkg/common"
)

type contextKey struct {
	name string
}

var identityKey = &contextKey{"identity"}

// Identity is the verified caller attached to a request after authentication.
// It is built once per request and treated as read-only afterwards.
type Identity struct {
	// Subject is the display name of the caller (preferred_username, name,
	// email or sub, whichever is present first).
	Subject string `json:"subject"`
	// ID is the canonical provider-scoped identifier, e.g. oidc:<issuer>:<sub>.
	ID        string   `json:"id,omitempty"`
	Roles     []string `json:"roles,omitempty"`
	Email     string   `json:"email,omitempty"`
	Name      string   `json:"name,omitempty"`
	Provider  string   `json:"provider,omitempty"`
	IssuedAt  int64    `json:"iat,omitempty"`
	ExpiresAt int64    `json:"exp,omitempty"`
}

// NewIdentity returns an identity with normalized roles.
func NewIdentity(subject string, roles ...string) *Identity {
	return &Identity{Subject: subject, Roles: NormalizeRoles(roles)}
}

// NormalizeRoles trims, de-duplicates and sorts role names so that responses
// derived from them are deterministic.
func NormalizeRoles(roles []string) []string {
	out := common.UniqueNonEmpty(roles)
	slices.Sort(out)
	return out
}

// HasRole reports exact membership of role.
func (i *Identity) HasRole(role string) bool {
	if i == nil {
		return false
	}
	return slices.Contains(i.Roles, role)
}

// WithIdentity adds the identity to the context
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext retrieves the identity from a context, nil if absent
func IdentityFromContext(ctx context.Context) *Identity {
	if id, ok := ctx.Value(identityKey).(*Identity); ok {
		return id
	}
	return nil
}

// FromRequest retrieves the identity attached to r
func FromRequest(r *http.Request) *Identity {
	return IdentityFromContext(r.Context())
}
