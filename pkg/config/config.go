// Package config holds the single typed configuration shared by the session
// and automaton layers, with a loader that merges defaults, an optional YAML
// file, and NBLOG_-prefixed environment overrides.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Config configures the whole posting pipeline. One instance is built at
// startup and passed read-only to every layer.
type Config struct {
	// Headless controls whether the browser runs without a visible window.
	// Headful runs enable the clipboard login strategy.
	Headless bool `koanf:"headless"`

	// MaxRetries bounds automaton retries: each job is attempted at most
	// MaxRetries+1 times.
	MaxRetries int `koanf:"max_retries"`

	// PostDelay is slept between jobs of the same account.
	PostDelay time.Duration `koanf:"post_delay"`

	// AccountDelay is slept between account groups.
	AccountDelay time.Duration `koanf:"account_delay"`

	// LoginTimeout bounds the manual-login wait after automated credential
	// entry could not be confirmed.
	LoginTimeout time.Duration `koanf:"login_timeout"`

	// LoginPollInterval is the poll interval during the manual-login wait.
	LoginPollInterval time.Duration `koanf:"login_poll_interval"`

	// DialogTimeout bounds the wait for the publish dialog to appear.
	DialogTimeout time.Duration `koanf:"dialog_timeout"`

	// DialogPollInterval is the poll interval for the dialog-presence check.
	DialogPollInterval time.Duration `koanf:"dialog_poll_interval"`

	// SecretsFile is an optional path to the external secrets store.
	SecretsFile string `koanf:"secrets_file"`
}

// Default returns the configuration used when no file or overrides are
// present. Timeouts mirror the automation protocol's fixed bounds.
func Default() Config {
	return Config{
		Headless:           true,
		MaxRetries:         2,
		PostDelay:          5 * time.Second,
		AccountDelay:       10 * time.Second,
		LoginTimeout:       300 * time.Second,
		LoginPollInterval:  2 * time.Second,
		DialogTimeout:      10 * time.Second,
		DialogPollInterval: 500 * time.Millisecond,
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment variables (NBLOG_MAX_RETRIES=3, NBLOG_HEADLESS=false, ...).
// An empty path skips the file layer.
func Load(path string) (Config, error) {
	cfg := Default()

	k := koanf.New(".")
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(data), kyaml.Parser()); err != nil {
			return cfg, fmt.Errorf("parse config file: %w", err)
		}
	}

	envProvider := env.Provider("NBLOG_", ".", func(key string) string {
		key = strings.TrimPrefix(key, "NBLOG_")
		// Credential overrides are the resolver's namespace, not config.
		if strings.HasPrefix(key, "PW_") {
			return ""
		}
		return strings.ToLower(key)
	})
	if err := k.Load(envProvider, nil); err != nil {
		return cfg, fmt.Errorf("load env overrides: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects values that would stall or tight-loop the pipeline.
func (c Config) Validate() error {
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be >= 0, got %d", c.MaxRetries)
	}
	if c.LoginTimeout <= 0 {
		return fmt.Errorf("login_timeout must be > 0, got %s", c.LoginTimeout)
	}
	if c.LoginPollInterval <= 0 {
		return fmt.Errorf("login_poll_interval must be > 0, got %s", c.LoginPollInterval)
	}
	if c.DialogTimeout <= 0 {
		return fmt.Errorf("dialog_timeout must be > 0, got %s", c.DialogTimeout)
	}
	if c.DialogPollInterval <= 0 {
		return fmt.Errorf("dialog_poll_interval must be > 0, got %s", c.DialogPollInterval)
	}
	if c.PostDelay < 0 || c.AccountDelay < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	return nil
}
