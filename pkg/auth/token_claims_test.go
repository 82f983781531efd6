package auth

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestTokenClaims_Username_Fallbacks(t *testing.T) {
	cases := []struct {
		name   string
		claims TokenClaims
		want   string
	}{
		{"preferred", TokenClaims{PreferredUsername: "alice", Name: "Alice A", Email: "a@example.com"}, "alice"},
		{"name", TokenClaims{Name: "Alice A", Email: "a@example.com"}, "Alice A"},
		{"email", TokenClaims{Email: "a@example.com"}, "a@example.com"},
		{"none", TokenClaims{}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.claims.Username(); got != tc.want {
				t.Fatalf("want %q, got %q", tc.want, got)
			}
		})
	}

	c := TokenClaims{}
	c.Subject = "sub-1"
	if c.Username() != "sub-1" {
		t.Fatalf("sub fallback: %q", c.Username())
	}
}

func TestTokenClaims_DecodeKeycloakPayload(t *testing.T) {
	payload := `{
		"sub": "8c2e",
		"iat": 1700000000,
		"exp": 1700000300,
		"aud": "account",
		"preferred_username": "admin",
		"realm_access": {"roles": ["ADMIN", "USER", "ADMIN"]},
		"resource_access": {"angular-app": {"roles": ["auditor"]}, "account": {"roles": ["manage-account"]}},
		"groups": ["/ops"]
	}`
	var c TokenClaims
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	id := c.Identity(OIDC_PROVIDER, "angular-app")
	if id.Subject != "admin" || id.ID != "8c2e" {
		t.Fatalf("identity mismatch: %+v", id)
	}
	if want := []string{"ADMIN", "USER", "auditor"}; !reflect.DeepEqual(id.Roles, want) {
		t.Fatalf("roles: got %v want %v", id.Roles, want)
	}
	if id.IssuedAt != 1700000000 || id.ExpiresAt != 1700000300 {
		t.Fatalf("times: %+v", id)
	}
}

func TestTokenClaims_GroupsOnlyWhenNoRoles(t *testing.T) {
	c := TokenClaims{Groups: []string{"/ops", "/dev"}}
	if got := c.AllRoles(""); !reflect.DeepEqual(got, []string{"/dev", "/ops"}) {
		t.Fatalf("groups fallback: %v", got)
	}
}

func TestIdentity_HasRole_Exact(t *testing.T) {
	id := NewIdentity("alice", "USER", "USER", " ")
	if !reflect.DeepEqual(id.Roles, []string{"USER"}) {
		t.Fatalf("normalize: %v", id.Roles)
	}
	if id.HasRole("user") || id.HasRole("ROLE_USER") || !id.HasRole("USER") {
		t.Fatal("HasRole must be exact")
	}
	var nilID *Identity
	if nilID.HasRole("USER") {
		t.Fatal("nil identity has no roles")
	}
}
