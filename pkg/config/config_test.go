package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.True(t, cfg.Headless)
	assert.Equal(t, 2, cfg.MaxRetries)
	assert.Equal(t, 300*time.Second, cfg.LoginTimeout)
	assert.Equal(t, 2*time.Second, cfg.LoginPollInterval)
	assert.Equal(t, 10*time.Second, cfg.DialogTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.DialogPollInterval)
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().MaxRetries, cfg.MaxRetries)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nblog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_retries: 5\npost_delay: 1s\nheadless: false\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, time.Second, cfg.PostDelay)
	assert.False(t, cfg.Headless)
	// Untouched keys keep defaults.
	assert.Equal(t, 300*time.Second, cfg.LoginTimeout)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nblog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_retries: 5\n"), 0o600))
	t.Setenv("NBLOG_MAX_RETRIES", "1")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.MaxRetries)
}

func TestLoadIgnoresCredentialEnvNamespace(t *testing.T) {
	t.Setenv("NBLOG_PW_USER_AT_NAVER_COM", "secret")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }},
		{"zero login timeout", func(c *Config) { c.LoginTimeout = 0 }},
		{"zero login poll", func(c *Config) { c.LoginPollInterval = 0 }},
		{"zero dialog timeout", func(c *Config) { c.DialogTimeout = 0 }},
		{"zero dialog poll", func(c *Config) { c.DialogPollInterval = 0 }},
		{"negative delay", func(c *Config) { c.PostDelay = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
