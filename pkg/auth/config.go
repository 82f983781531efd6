package auth

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type authFileConfig struct {
	AllowTokenParam bool `yaml:"allow_token_param"`

	Providers struct {
		OIDC struct {
			Enabled            bool   `yaml:"enabled"`
			IssuerURL          string `yaml:"issuer_url"`
			ClientID           string `yaml:"client_id"`
			Audience           string `yaml:"audience"`
			InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
		} `yaml:"oidc"`

		JWT struct {
			Enabled  bool   `yaml:"enabled"`
			Secret   string `yaml:"secret"`
			Issuer   string `yaml:"issuer"`
			ClientID string `yaml:"client_id"`
		} `yaml:"jwt"`
	} `yaml:"providers"`
}

// LoadAuthConfigFromFile reads YAML and converts to AuthConfig
func LoadAuthConfigFromFile(path string) (*AuthConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read auth config: %w", err)
	}
	return ParseAuthConfig(raw)
}

// ParseAuthConfig converts YAML bytes to AuthConfig. Disabled providers are left nil.
func ParseAuthConfig(raw []byte) (*AuthConfig, error) {
	var fc authFileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return nil, fmt.Errorf("parse auth config: %w", err)
	}

	ac := &AuthConfig{
		AllowTokenParam: fc.AllowTokenParam,
	}

	if o := fc.Providers.OIDC; o.Enabled {
		ac.OIDC = &OIDCConfig{
			Enabled:            true,
			IssuerURL:          o.IssuerURL,
			ClientID:           o.ClientID,
			Audience:           o.Audience,
			InsecureSkipVerify: o.InsecureSkipVerify,
		}
	}

	if j := fc.Providers.JWT; j.Enabled {
		ac.JWT = &JWTConfig{
			Enabled:  true,
			Secret:   j.Secret,
			Issuer:   j.Issuer,
			ClientID: j.ClientID,
		}
	}

	return ac, nil
}
