package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variable naming.
const (
	EnvPrefix     = "SFSCORE_"
	EnvConfigFile = "SFSCORE_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if SFSCORE_CONFIG is set
//  3. env (prefix SFSCORE_)
//
// A missing base_url is an error: the process must not start without an
// upstream to talk to.
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// Map env keys like SFSCORE_BASE_URL -> base_url (flat keys). List keys
	// take comma separated values.
	envProvider := env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(EnvPrefix))
		if _, ok := listKeys[key]; ok {
			return key, splitList(value)
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var listKeys = map[string]struct{}{
	"static_aliases": {},
	"cors_origins":   {},
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// normalize validates c and canonicalizes values that accept several spellings.
func (c *Config) normalize() error {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base_url must not be empty (set %sBASE_URL)", ErrInvalidConfig, EnvPrefix)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: base_url %q must be an absolute http(s) URL", ErrInvalidConfig, c.BaseURL)
	}

	c.Token = strings.TrimSpace(c.Token)
	c.Token = strings.TrimPrefix(c.Token, "Bearer ")

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	}

	switch strings.ToLower(c.ExternalCodeSource) {
	case "", "userid":
		c.ExternalCodeSource = SourceUserID
	case "username":
		c.ExternalCodeSource = SourceUsername
	default:
		return fmt.Errorf("%w: external_code_source must be %s or %s, got %q",
			ErrInvalidConfig, SourceUserID, SourceUsername, c.ExternalCodeSource)
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
		c.LogFormat = strings.ToLower(c.LogFormat)
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}

	if c.UserEntity == "" || c.ScoreEntity == "" {
		return fmt.Errorf("%w: user_entity and score_entity must not be empty", ErrInvalidConfig)
	}
	if c.LookupTimeout <= 0 || c.ReadTimeout <= 0 || c.WriteTimeout <= 0 {
		return fmt.Errorf("%w: upstream timeouts must be positive", ErrInvalidConfig)
	}
	if c.PreviewLimit <= 0 {
		return fmt.Errorf("%w: preview_limit must be positive", ErrInvalidConfig)
	}
	if c.Locale == "" {
		c.Locale = "en-US"
	}
	return nil
}
