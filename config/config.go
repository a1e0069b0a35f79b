// Package config loads client settings from TOML or YAML files and the
// environment, and turns them into a [client.Client].
//
// A minimal TOML file:
//
//	base_url = "https://api.example.com/v1"
//	timeout  = "10s"
//
//	[auth]
//	location  = "header"
//	key       = "X-Api-Key"
//	value_env = "EXAMPLE_API_KEY"
//
// Secrets are best kept out of the file: value_env reads the credential
// from the environment, optionally populated from .env files, and
// value_file reads it from a file that [WatchCredential] can follow.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/adamwoolhether/apiclient/client"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported config format")
	ErrMissingSecret     = errors.New("credential value not found")
)

// Config holds the file representation of a client.
type Config struct {
	BaseURL           string    `toml:"base_url" yaml:"base_url" validate:"required,url"`
	UserAgent         string    `toml:"user_agent" yaml:"user_agent"`
	Timeout           Duration  `toml:"timeout" yaml:"timeout" validate:"gte=0"`
	NoFollowRedirects bool      `toml:"no_follow_redirects" yaml:"no_follow_redirects"`
	StrictStatus      bool      `toml:"strict_status" yaml:"strict_status"`
	Auth              *Auth     `toml:"auth" yaml:"auth"`
	Throttle          *Throttle `toml:"throttle" yaml:"throttle"`
}

// Auth describes the client credential. Exactly one source for the value
// is expected; Value wins over ValueEnv, which wins over ValueFile.
type Auth struct {
	Location  string `toml:"location" yaml:"location" validate:"omitempty,oneof=query header bearer"`
	Key       string `toml:"key" yaml:"key" validate:"excluded_if=Location bearer"`
	Value     string `toml:"value" yaml:"value" validate:"required_without_all=ValueEnv ValueFile"`
	ValueEnv  string `toml:"value_env" yaml:"value_env"`
	ValueFile string `toml:"value_file" yaml:"value_file"`
}

// Throttle enables per-host rate limiting.
type Throttle struct {
	RPS   int `toml:"rps" yaml:"rps" validate:"gt=0"`
	Burst int `toml:"burst" yaml:"burst" validate:"gt=0"`
}

// Duration is a time.Duration read from strings such as "1m30s".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parsing duration: %w", err)
	}
	*d = Duration(v)
	return nil
}

// Load reads the config file at path, choosing the decoder by extension
// (.toml, .yaml or .yml), and validates it. envFiles are loaded into the
// process environment first without overriding variables already set.
func Load(path string, envFiles ...string) (Config, error) {
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return Config{}, fmt.Errorf("loading env files: %w", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return Config{}, fmt.Errorf("decoding toml: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("decoding yaml: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Credential resolves the configured credential, or returns nil when the
// config has no auth section.
func (c Config) Credential() (*client.Credential, error) {
	if c.Auth == nil {
		return nil, nil
	}

	value, err := c.Auth.resolve()
	if err != nil {
		return nil, err
	}

	switch c.Auth.Location {
	case "bearer":
		return client.NewBearer(value), nil
	case "header":
		return client.NewCredential(client.LocationHeader, c.Auth.Key, value), nil
	default:
		return client.NewCredential(client.LocationQuery, c.Auth.Key, value), nil
	}
}

func (a Auth) resolve() (string, error) {
	switch {
	case a.Value != "":
		return a.Value, nil

	case a.ValueEnv != "":
		v, ok := os.LookupEnv(a.ValueEnv)
		if !ok {
			return "", fmt.Errorf("%w: env %s", ErrMissingSecret, a.ValueEnv)
		}
		return v, nil

	default:
		return readSecret(a.ValueFile)
	}
}

// readSecret reads a credential file, trimming surrounding whitespace.
func readSecret(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMissingSecret, err)
	}

	v := strings.TrimSpace(string(b))
	if v == "" {
		return "", fmt.Errorf("%w: %s is empty", ErrMissingSecret, path)
	}

	return v, nil
}

// Options translates the config into client options.
func (c Config) Options() ([]client.Option, error) {
	var opts []client.Option

	if c.UserAgent != "" {
		opts = append(opts, client.WithUserAgent(c.UserAgent))
	}
	if c.Timeout > 0 {
		opts = append(opts, client.WithTimeout(time.Duration(c.Timeout)))
	}
	if c.NoFollowRedirects {
		opts = append(opts, client.WithNoFollowRedirects())
	}
	if c.StrictStatus {
		opts = append(opts, client.WithStrictStatus())
	}
	if c.Throttle != nil {
		opts = append(opts, client.WithThrottle(c.Throttle.RPS, c.Throttle.Burst))
	}

	cred, err := c.Credential()
	if err != nil {
		return nil, fmt.Errorf("resolving credential: %w", err)
	}
	if cred != nil {
		opts = append(opts, client.WithAuthentication(cred))
	}

	return opts, nil
}

// Build returns a client for cfg. extra options are applied after the
// configured ones, so they can add a logger or override settings.
func Build(cfg Config, extra ...client.Option) (*client.Client, error) {
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}

	return client.Build(cfg.BaseURL, append(opts, extra...)...)
}
