package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/entrhq/nblog/pkg/browser"
	"github.com/entrhq/nblog/pkg/config"
	"github.com/entrhq/nblog/pkg/credentials"
	"github.com/entrhq/nblog/pkg/input"
	"github.com/entrhq/nblog/pkg/model"
	"github.com/entrhq/nblog/pkg/report"
)

var (
	doctorSecrets  string
	doctorTemplate string
	doctorSkipWeb  bool
)

var doctorCmd = &cobra.Command{
	Use:   "doctor [jobs.json]",
	Short: "Check the environment: browser, credentials, secrets file",
	Long: `Verify that the browser can be launched and, when a job file is given,
that every account has a resolvable credential.

Examples:
  nblog doctor
  nblog doctor jobs.json --secrets secrets.json

  # Write a secrets file template for every account in the job file
  nblog doctor jobs.json --write-secrets-template secrets.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDoctor,
}

func init() {
	doctorCmd.Flags().StringVar(&doctorSecrets, "secrets", "", "path to secrets file (overrides config)")
	doctorCmd.Flags().StringVar(&doctorTemplate, "write-secrets-template", "", "write a secrets file template to this path and exit")
	doctorCmd.Flags().BoolVar(&doctorSkipWeb, "no-browser", false, "skip the browser launch probe")
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	var jobs []model.Job
	if len(args) == 1 {
		result := input.LoadFile(args[0])
		rep := report.New()
		rep.Validation(result, args[0])
		if !result.Valid {
			return fmt.Errorf("job file is invalid")
		}
		jobs = result.Jobs
	}

	if doctorTemplate != "" {
		if len(jobs) == 0 {
			return fmt.Errorf("a valid job file is required to write a secrets template")
		}
		accountIDs := make([]string, 0, len(jobs))
		seen := make(map[string]bool)
		for _, job := range jobs {
			if !seen[job.AccountID] {
				seen[job.AccountID] = true
				accountIDs = append(accountIDs, job.AccountID)
			}
		}
		if err := credentials.WriteStoreTemplate(doctorTemplate, accountIDs); err != nil {
			return err
		}
		fmt.Printf("secrets template written to %s (%d accounts)\n", doctorTemplate, len(accountIDs))
		return nil
	}

	secretsFile := cfg.SecretsFile
	if doctorSecrets != "" {
		secretsFile = doctorSecrets
	}
	resolver, err := newResolver(secretsFile, log)
	if err != nil {
		return err
	}

	browserOK, browserDetail := probeBrowser(cfg, log)
	report.New().Doctor(jobs, resolver, browserOK, browserDetail)
	if !browserOK {
		return fmt.Errorf("browser probe failed")
	}
	return nil
}

// probeBrowser launches and immediately closes a headless session.
func probeBrowser(cfg config.Config, log *zap.Logger) (bool, string) {
	if doctorSkipWeb {
		return true, "skipped"
	}
	launcher, err := browser.NewLauncher(cfg, browser.NoClipboard(), log)
	if err != nil {
		return false, err.Error()
	}
	defer launcher.Shutdown()

	session, err := launcher.Open(true)
	if err != nil {
		return false, err.Error()
	}
	session.Close()
	return true, "chromium launches and closes cleanly"
}
