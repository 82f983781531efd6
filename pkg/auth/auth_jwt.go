package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-jwt/jwt/v5"
)

const JWT_PROVIDER = "jwt"

// JWTConfig enables verification of HMAC-signed tokens that share the Keycloak
// claim layout. Meant for local development without a running Keycloak.
type JWTConfig struct {
	Enabled  bool
	Secret   string
	Issuer   string
	ClientID string
}

// JWTProvider verifies HS256/384/512 tokens with a shared secret.
type JWTProvider struct {
	ProviderBase
	secret   []byte
	clientID string
	parser   *jwt.Parser
}

var _ Provider = (*JWTProvider)(nil)

func NewJWTProvider(config *JWTConfig, logger *slog.Logger) (*JWTProvider, error) {
	if config == nil || config.Secret == "" {
		return nil, errors.New("JWT secret cannot be empty")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithIssuedAt(),
	}
	if config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(config.Issuer))
	}

	return &JWTProvider{
		ProviderBase: NewProviderBase(logger, JWT_PROVIDER),
		secret:       []byte(config.Secret),
		clientID:     config.ClientID,
		parser:       jwt.NewParser(opts...),
	}, nil
}

func (j *JWTProvider) Name() string {
	return JWT_PROVIDER
}

func (j *JWTProvider) Verify(_ context.Context, rawToken string) (*Identity, error) {
	if rawToken == "" {
		return nil, ErrNoToken
	}

	var claims TokenClaims
	_, err := j.parser.ParseWithClaims(rawToken, &claims, func(t *jwt.Token) (any, error) {
		return j.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrExpiredToken, err)
		}
		j.logger.Debug("JWT verification failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	id := claims.Identity(JWT_PROVIDER, j.clientID)
	if id.Subject == "" {
		return nil, fmt.Errorf("%w: no subject", ErrInvalidToken)
	}
	id.ID = JWT_PROVIDER + ":" + claims.Subject

	j.logger.Debug("Verified JWT token", "subject", id.Subject, "roles", id.Roles)
	return id, nil
}
