package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "netsearch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, Validate(DefaultConfig()))
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
service_url: https://network.indra.bio/api
http_addr: 127.0.0.1:8088
link:
  base_url: https://network.indra.bio
  path: /search
  hash_routing: false
client:
  timeout: 45s
  lookup_rate: 2.5
`)
	t.Setenv(EnvServiceURL, "")
	t.Setenv(EnvLogLevel, "")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://network.indra.bio/api", cfg.ServiceURL)
	assert.Equal(t, "127.0.0.1:8088", cfg.HTTPAddr)
	assert.Equal(t, "/search", cfg.Link.Path)
	assert.False(t, cfg.Link.HashRouting)
	assert.Equal(t, 45*time.Second, cfg.Client.Timeout)
	assert.Equal(t, 2.5, cfg.Client.LookupRate)
	// Untouched keys keep their defaults.
	assert.Equal(t, uint32(5), cfg.Client.BreakerFailures)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "service_url: http://x\nservice_ulr: http://y\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YAML syntax error")
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().HTTPAddr, cfg.HTTPAddr)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvServiceURL, "https://staging.example.org")
	t.Setenv(EnvAuthToken, "s3cret")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://staging.example.org", cfg.ServiceURL)
	assert.Equal(t, "s3cret", cfg.AuthToken)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"Bad service url", func(c *Config) { c.ServiceURL = "not a url" }, "ServiceURL"},
		{"Missing listen address", func(c *Config) { c.HTTPAddr = "" }, "HTTPAddr"},
		{"Unknown log level", func(c *Config) { c.LogLevel = "verbose" }, "LogLevel"},
		{"Zero timeout", func(c *Config) { c.Client.Timeout = 0 }, "Timeout"},
		{"Zero burst", func(c *Config) { c.Client.LookupBurst = 0 }, "LookupBurst"},
		{"Missing link base", func(c *Config) { c.Link.BaseURL = "" }, "BaseURL"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tc.field), "error %q should name %s", err, tc.field)
		})
	}
}
