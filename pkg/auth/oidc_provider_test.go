package auth

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
)

const testIssuer = "https://localhost:8443/realms/biometric-2fa"

func newOIDCForTest(t *testing.T, cfg *OIDCConfig) (*OIDCProvider, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("rsa key: %v", err)
	}
	if cfg.IssuerURL == "" {
		cfg.IssuerURL = testIssuer
	}
	ks := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}}
	return NewOIDCProviderWithKeySet(cfg, ks, discardLogger()), key
}

func signRS256(t *testing.T, key *rsa.PrivateKey, claims TokenClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func TestOIDCProvider_VerifyKeycloakAccessToken(t *testing.T) {
	p, key := newOIDCForTest(t, &OIDCConfig{Enabled: true, ClientID: "angular-app"})

	claims := keycloakClaims("alice", time.Minute, "USER", "default-roles-biometric-2fa")
	claims.Issuer = testIssuer
	claims.Audience = jwt.ClaimStrings{"account"}
	claims.Email = "alice@example.com"

	id, err := p.Verify(context.Background(), signRS256(t, key, claims))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id.Subject != "alice" || id.Email != "alice@example.com" || id.Provider != OIDC_PROVIDER {
		t.Fatalf("identity mismatch: %+v", id)
	}
	if !id.HasRole("USER") || id.HasRole("ADMIN") {
		t.Fatalf("roles mismatch: %v", id.Roles)
	}
	if !strings.HasPrefix(id.ID, "oidc:localhost-8443~realms~biometric-2fa:") {
		t.Fatalf("canonical id: %q", id.ID)
	}
}

func TestOIDCProvider_WrongIssuer(t *testing.T) {
	p, key := newOIDCForTest(t, &OIDCConfig{Enabled: true})
	claims := keycloakClaims("alice", time.Minute, "USER")
	claims.Issuer = "https://attacker.example/realms/x"

	if _, err := p.Verify(context.Background(), signRS256(t, key, claims)); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken, got %v", err)
	}
}

func TestOIDCProvider_Expired(t *testing.T) {
	p, key := newOIDCForTest(t, &OIDCConfig{Enabled: true})
	claims := keycloakClaims("alice", -time.Minute, "USER")
	claims.Issuer = testIssuer

	if _, err := p.Verify(context.Background(), signRS256(t, key, claims)); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("want ErrExpiredToken, got %v", err)
	}
}

func TestOIDCProvider_ForeignKey(t *testing.T) {
	p, _ := newOIDCForTest(t, &OIDCConfig{Enabled: true})
	other, _ := rsa.GenerateKey(rand.Reader, 2048)
	claims := keycloakClaims("alice", time.Minute, "ADMIN")
	claims.Issuer = testIssuer

	if _, err := p.Verify(context.Background(), signRS256(t, other, claims)); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken, got %v", err)
	}
}

func TestOIDCProvider_Audience(t *testing.T) {
	p, key := newOIDCForTest(t, &OIDCConfig{Enabled: true, Audience: "demo-api"})
	claims := keycloakClaims("alice", time.Minute, "USER")
	claims.Issuer = testIssuer
	claims.Audience = jwt.ClaimStrings{"account"}

	if _, err := p.Verify(context.Background(), signRS256(t, key, claims)); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("audience mismatch: want ErrInvalidToken, got %v", err)
	}

	claims.Audience = jwt.ClaimStrings{"account", "demo-api"}
	if _, err := p.Verify(context.Background(), signRS256(t, key, claims)); err != nil {
		t.Fatalf("audience match: %v", err)
	}
}

func TestNewOIDCProvider_RequiresIssuer(t *testing.T) {
	if _, err := NewOIDCProvider(context.Background(), &OIDCConfig{Enabled: true}, nil); err == nil {
		t.Fatal("expected error without issuer url")
	}
}
