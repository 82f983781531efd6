package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/codespace-operator/keycloak-demo/pkg/auth"
	"github.com/codespace-operator/keycloak-demo/pkg/common"
)

const (
	EnvPrefix = "KEYCLOAK_DEMO"
	FileBase  = "keycloak-demo"
)

var ErrNoProvider = errors.New("no authentication provider configured")

type Config struct {
	Server ServerConfig     `mapstructure:"server"`
	Log    common.LogConfig `mapstructure:"log"`
	CORS   CORSConfig       `mapstructure:"cors"`
	Auth   AuthConfig       `mapstructure:"auth"`
	RBAC   RBACConfig       `mapstructure:"rbac"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type AuthConfig struct {
	// ConfigFile replaces every other auth key with the YAML file's contents.
	ConfigFile      string     `mapstructure:"config_file"`
	AllowTokenParam bool       `mapstructure:"allow_token_param"`
	RequireProvider bool       `mapstructure:"require_provider"`
	OIDC            OIDCConfig `mapstructure:"oidc"`
	JWT             JWTConfig  `mapstructure:"jwt"`
}

type OIDCConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	IssuerURL          string `mapstructure:"issuer_url"`
	ClientID           string `mapstructure:"client_id"`
	Audience           string `mapstructure:"audience"`
	InsecureSkipVerify bool   `mapstructure:"insecure_skip_verify"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// RBACConfig enables the role hierarchy when both paths are set.
type RBACConfig struct {
	ModelPath  string `mapstructure:"model_path"`
	PolicyPath string `mapstructure:"policy_path"`
	Watch      bool   `mapstructure:"watch"`
}

func (r RBACConfig) Enabled() bool {
	return r.ModelPath != "" && r.PolicyPath != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8081")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("log.level", string(common.LevelInfo))
	v.SetDefault("log.time_format", time.RFC3339)
	v.SetDefault("log.no_color", false)
	v.SetDefault("log.add_source", false)

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:4200"})

	v.SetDefault("auth.config_file", "")
	v.SetDefault("auth.allow_token_param", false)
	v.SetDefault("auth.require_provider", true)
	v.SetDefault("auth.oidc.enabled", false)
	v.SetDefault("auth.oidc.issuer_url", "")
	v.SetDefault("auth.oidc.client_id", "")
	v.SetDefault("auth.oidc.audience", "")
	v.SetDefault("auth.oidc.insecure_skip_verify", false)
	v.SetDefault("auth.jwt.secret", "")
	v.SetDefault("auth.jwt.issuer", "")

	v.SetDefault("rbac.model_path", "")
	v.SetDefault("rbac.policy_path", "")
	v.SetDefault("rbac.watch", true)
}

// Load reads configuration from keycloak-demo.yaml and KEYCLOAK_DEMO_* env vars.
func Load() (*Config, error) {
	return LoadFrom(viper.New())
}

// LoadFrom is Load on a caller-supplied viper instance.
func LoadFrom(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	if err := common.SetupViper(v, EnvPrefix, FileBase); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// env delivers "a, b" as one element when the hook does not split it
	var origins []string
	for _, o := range cfg.CORS.AllowedOrigins {
		origins = append(origins, common.SplitCSV(o)...)
	}
	cfg.CORS.AllowedOrigins = common.UniqueNonEmpty(origins)

	return &cfg, nil
}

// ToAuthConfig resolves the provider configuration. When auth.config_file is
// set the file is authoritative.
func (c *Config) ToAuthConfig() (*auth.AuthConfig, error) {
	if c.Auth.ConfigFile != "" {
		return auth.LoadAuthConfigFromFile(c.Auth.ConfigFile)
	}

	ac := &auth.AuthConfig{AllowTokenParam: c.Auth.AllowTokenParam}

	if o := c.Auth.OIDC; o.Enabled && o.IssuerURL != "" {
		ac.OIDC = &auth.OIDCConfig{
			Enabled:            true,
			IssuerURL:          o.IssuerURL,
			ClientID:           o.ClientID,
			Audience:           o.Audience,
			InsecureSkipVerify: o.InsecureSkipVerify,
		}
	}

	if j := c.Auth.JWT; j.Secret != "" {
		ac.JWT = &auth.JWTConfig{
			Enabled:  true,
			Secret:   j.Secret,
			Issuer:   j.Issuer,
			ClientID: c.Auth.OIDC.ClientID,
		}
	}

	return ac, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if (c.RBAC.ModelPath == "") != (c.RBAC.PolicyPath == "") {
		return errors.New("rbac.model_path and rbac.policy_path must be set together")
	}

	ac, err := c.ToAuthConfig()
	if err != nil {
		return err
	}
	if c.Auth.RequireProvider && ac.OIDC == nil && ac.JWT == nil {
		return ErrNoProvider
	}
	return nil
}
