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

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "TCXVIEW_"

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if TCXVIEW_CONFIG is set
//  3. env (prefix TCXVIEW_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv(EnvPrefix + "CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	// TCXVIEW_DATA_SERVICE_URL -> data_service_url (flat keys).
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.Validate(ctx); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate(_ context.Context) error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DataServiceURL == "":
		return fmt.Errorf("%w: data_service_url must not be empty", ErrInvalidConfig)
	case c.CompactPoints < 1:
		return fmt.Errorf("%w: compact_points must be positive", ErrInvalidConfig)
	case c.WarmupSamples < 0:
		return fmt.Errorf("%w: warmup_samples must not be negative", ErrInvalidConfig)
	case c.Units != "metric" && c.Units != "imperial":
		return fmt.Errorf("%w: units must be metric or imperial, got %q", ErrInvalidConfig, c.Units)
	}
	if _, err := url.ParseRequestURI(c.DataServiceURL); err != nil {
		return fmt.Errorf("%w: data_service_url: %v", ErrInvalidConfig, err)
	}
	return nil
}
