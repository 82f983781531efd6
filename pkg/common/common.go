package common

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// SetupViper configures common Viper settings.
// envPrefix: e.g. "KEYCLOAK_DEMO"
// fileBase:  e.g. "keycloak-demo" (-> keycloak-demo.yaml)
//
// A missing config file is not an error; env-only configuration is fine.
// <PREFIX>_CONFIG_DEFAULT_PATH may name a file or a directory to search first.
func SetupViper(v *viper.Viper, envPrefix, fileBase string) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// the default logger is not set up yet
	now := func() string { return time.Now().Format(time.RFC3339) }
	log := func(f string, a ...any) {
		fmt.Fprintf(os.Stderr, now()+" "+f+"\n", a...)
	}

	var dirOverride string
	if raw := strings.TrimSpace(os.Getenv(envPrefix + "_CONFIG_DEFAULT_PATH")); raw != "" {
		p := os.ExpandEnv(raw)

		if fi, err := os.Stat(p); err == nil && fi.IsDir() {
			dirOverride = p
		} else {
			if !filepath.IsAbs(p) {
				if abs, err := filepath.Abs(p); err == nil {
					p = abs
				}
			}
			if _, err := os.Stat(p); err != nil {
				return fmt.Errorf("%s_CONFIG_DEFAULT_PATH points to missing file: %s: %w", envPrefix, p, err)
			}
			v.SetConfigFile(p)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("read %s_CONFIG_DEFAULT_PATH=%s: %w", envPrefix, p, err)
			}
			log("loaded config override (file): %s", v.ConfigFileUsed())
			return nil
		}
	}

	v.SetConfigName(fileBase)
	v.SetConfigType("yaml")

	if dirOverride != "" {
		v.AddConfigPath(dirOverride)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/" + fileBase + "/")
	v.AddConfigPath("$HOME/." + fileBase + "/")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
		log("no config file found via search (env-only is fine)")
		return nil
	}
	log("loaded config (search): %s", v.ConfigFileUsed())
	return nil
}

// SplitCSV splits a comma separated list, dropping blanks.
func SplitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// UniqueNonEmpty trims, removes duplicates and empty strings, keeping first-seen order.
func UniqueNonEmpty(in []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
