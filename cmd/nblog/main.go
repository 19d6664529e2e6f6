// Package main implements the nblog CLI: batch posting to Naver Blog from a
// JSON job file, plus validation and environment checks.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/entrhq/nblog/pkg/config"
	"github.com/entrhq/nblog/pkg/credentials"
	"github.com/entrhq/nblog/pkg/logging"
)

var (
	configFile string
	verbose    bool

	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "nblog",
	Short: "Unattended batch publishing to Naver Blog",
	Long: `nblog reads a JSON job file (account + post content per entry), logs in to
each account in turn, and publishes every post through the blog's web editor.

Secrets are resolved per account from, in order: the NBLOG_PW_* environment
variables, a secrets file, and the job entry itself.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to config.yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.AddCommand(postCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(doctorCmd)
}

// setup loads config and logging shared by every subcommand.
func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}
	log, err := logging.New(verbose)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, log, nil
}

// newResolver builds the credential resolver, loading the secrets file when
// one is configured.
func newResolver(secretsFile string, log *zap.Logger) (*credentials.Resolver, error) {
	if secretsFile == "" {
		return credentials.NewResolver(nil), nil
	}
	secrets, err := credentials.LoadStore(secretsFile)
	if err != nil {
		return nil, fmt.Errorf("load secrets file: %w", err)
	}
	log.Debug("secrets file loaded", zap.String("path", secretsFile), zap.Int("accounts", len(secrets)))
	return credentials.NewResolver(secrets), nil
}
