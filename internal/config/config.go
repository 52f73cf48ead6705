// Package config loads the netsearch configuration: defaults, then an
// optional YAML file, then environment overrides, then validation.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the file.
const (
	EnvServiceURL = "NETSEARCH_SERVICE_URL"
	EnvAuthToken  = "NETSEARCH_AUTH_TOKEN"
	EnvLogLevel   = "NETSEARCH_LOG_LEVEL"
)

// Config is the full netsearch configuration.
type Config struct {
	// Base address of the network-search service.
	ServiceURL string `yaml:"service_url" validate:"required,url"`
	// Listen address of the HTTP façade.
	HTTPAddr string `yaml:"http_addr" validate:"required"`
	// Optional bearer token required by the façade.
	AuthToken string `yaml:"auth_token"`
	LogLevel  string `yaml:"log_level" validate:"oneof=debug info warn error"`

	Link   LinkConfig   `yaml:"link"`
	Client ClientConfig `yaml:"client"`
}

// LinkConfig describes where the web client lives, for share links.
type LinkConfig struct {
	BaseURL     string `yaml:"base_url" validate:"required,url"`
	Path        string `yaml:"path"`
	HashRouting bool   `yaml:"hash_routing"`
}

// ClientConfig tunes the search service client.
type ClientConfig struct {
	Timeout         time.Duration `yaml:"timeout" validate:"gt=0"`
	BreakerFailures uint32        `yaml:"breaker_failures" validate:"gte=1"`
	BreakerTimeout  time.Duration `yaml:"breaker_timeout" validate:"gt=0"`
	LookupRate      float64       `yaml:"lookup_rate" validate:"gt=0"`
	LookupBurst     int           `yaml:"lookup_burst" validate:"gte=1"`
}

// DefaultConfig returns a configuration for a local service.
func DefaultConfig() Config {
	return Config{
		ServiceURL: "http://localhost:5000",
		HTTPAddr:   ":9190",
		LogLevel:   "info",

		Link: LinkConfig{
			BaseURL:     "http://localhost:5000",
			HashRouting: true,
		},

		Client: ClientConfig{
			// Searches may run up to the 120s user timeout plus overhead.
			Timeout:         150 * time.Second,
			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
			LookupRate:      10,
			LookupBurst:     5,
		},
	}
}

// Load reads the YAML file at path (if any) over the defaults using strict
// parsing, applies environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to open config: %w", err)
		}
		defer file.Close()
		if err := decode(file, &cfg); err != nil {
			return cfg, err
		}
	}

	applyEnv(&cfg, os.LookupEnv)

	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func decode(r io.Reader, cfg *Config) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("YAML syntax error in config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvServiceURL); ok && v != "" {
		cfg.ServiceURL = v
	}
	if v, ok := lookup(EnvAuthToken); ok {
		cfg.AuthToken = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = v
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field constraint of cfg.
func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s fails %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
