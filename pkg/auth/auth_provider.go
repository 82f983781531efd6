package auth

import (
	"context"
	"log/slog"

	"github.com/codespace-operator/keycloak-demo/pkg/common"
)

// Provider verifies a raw bearer credential and returns the caller's identity.
// Implementations must be safe for concurrent use.
type Provider interface {
	Name() string
	Verify(ctx context.Context, rawToken string) (*Identity, error)
}

// common fields for providers
type ProviderBase struct {
	logger *slog.Logger
}

func NewProviderBase(logger *slog.Logger, component string) ProviderBase {
	if logger == nil {
		logger = slog.Default()
	}
	return ProviderBase{logger: common.LoggerWithComponent(logger, component)}
}
