package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
)

type Manager interface {
	// request validation
	ValidateRequest(r *http.Request) (*Identity, error)

	// provider access
	GetProvider(name string) Provider
	ListProviders() []string
}

type AuthManager struct {
	providers []Provider
	config    *AuthConfig
	logger    *slog.Logger
}

// compile-time check: concrete matches interface
var _ Manager = (*AuthManager)(nil)

// AuthConfig holds authentication configuration
type AuthConfig struct {
	// AllowTokenParam accepts ?access_token= in addition to the Authorization header.
	AllowTokenParam bool

	// OIDC (Keycloak) configuration
	OIDC *OIDCConfig

	// Shared-secret JWT configuration
	JWT *JWTConfig
}

// NewAuthManager builds every enabled provider. OIDC discovery runs under ctx.
func NewAuthManager(ctx context.Context, cfg *AuthConfig, logger *slog.Logger) (*AuthManager, error) {
	if cfg == nil {
		cfg = &AuthConfig{}
	}
	am := NewAuthManagerWithProviders(cfg, logger)
	if err := am.initializeProviders(ctx); err != nil {
		return nil, err
	}
	return am, nil
}

// NewAuthManagerWithProviders uses the given providers as-is, in order.
func NewAuthManagerWithProviders(cfg *AuthConfig, logger *slog.Logger, providers ...Provider) *AuthManager {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = &AuthConfig{}
	}
	return &AuthManager{
		providers: providers,
		config:    cfg,
		logger:    logger.With("component", "auth"),
	}
}

// initializeProviders sets up authentication providers based on config.
// OIDC is consulted before the shared-secret provider.
func (am *AuthManager) initializeProviders(ctx context.Context) error {
	if am.config.OIDC != nil && am.config.OIDC.Enabled && am.config.OIDC.IssuerURL != "" {
		p, err := NewOIDCProvider(ctx, am.config.OIDC, am.logger)
		if err != nil {
			am.logger.Error("Failed to initialize OIDC provider", "error", err)
			return err
		}
		am.providers = append(am.providers, p)
		am.logger.Info("OIDC authentication provider initialized", "issuer", am.config.OIDC.IssuerURL)
	}

	if am.config.JWT != nil && am.config.JWT.Enabled {
		p, err := NewJWTProvider(am.config.JWT, am.logger)
		if err != nil {
			am.logger.Error("Failed to initialize JWT provider", "error", err)
			return err
		}
		am.providers = append(am.providers, p)
		am.logger.Warn("Shared-secret JWT provider initialized - intended for development")
	}

	if len(am.providers) == 0 {
		am.logger.Warn("No authentication providers configured")
	}
	return nil
}

func (am *AuthManager) GetProvider(name string) Provider {
	for _, p := range am.providers {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

func (am *AuthManager) ListProviders() []string {
	out := make([]string, 0, len(am.providers))
	for _, p := range am.providers {
		out = append(out, p.Name())
	}
	return out
}

// ValidateRequest extracts the bearer token and returns the identity from the
// first provider that accepts it. ErrNoToken means no credential was presented.
func (am *AuthManager) ValidateRequest(r *http.Request) (*Identity, error) {
	token := ExtractTokenFromRequest(r, am.config.AllowTokenParam)
	if token == "" {
		return nil, ErrNoToken
	}
	if len(am.providers) == 0 {
		return nil, ErrInvalidToken
	}

	var errs []error
	for _, p := range am.providers {
		id, err := p.Verify(r.Context(), token)
		if err == nil {
			return id, nil
		}
		errs = append(errs, err)
	}

	joined := errors.Join(errs...)
	am.logger.Debug("Token rejected by all providers", "error", joined)
	if errors.Is(joined, ErrExpiredToken) {
		return nil, ErrExpiredToken
	}
	return nil, ErrInvalidToken
}
