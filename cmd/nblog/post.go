package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/entrhq/nblog/pkg/browser"
	"github.com/entrhq/nblog/pkg/config"
	"github.com/entrhq/nblog/pkg/input"
	"github.com/entrhq/nblog/pkg/orchestrator"
	"github.com/entrhq/nblog/pkg/render"
	"github.com/entrhq/nblog/pkg/report"
)

var (
	postAll      bool
	postIndex    int
	postAccount  string
	postDryRun   bool
	postHeadless bool
	postSecrets  string
	postOut      string
	postRetries  int
	postQuiet    bool
	postFormat   string
)

var postCmd = &cobra.Command{
	Use:   "post <jobs.json>",
	Short: "Publish posts from a job file",
	Long: `Publish the selected jobs from a JSON job file. Exactly one of --all,
--index, or --account must be given.

Examples:
  # Post everything
  nblog post jobs.json --all

  # Post the third entry only
  nblog post jobs.json --index 2

  # Post every job for accounts on one domain, watching the browser
  nblog post jobs.json --account '*@naver.com' --headless=false

  # See what would happen without opening a browser
  nblog post jobs.json --all --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runPost,
}

func init() {
	postCmd.Flags().BoolVar(&postAll, "all", false, "post every job")
	postCmd.Flags().IntVar(&postIndex, "index", -1, "post only the job at this index")
	postCmd.Flags().StringVar(&postAccount, "account", "", "post only jobs whose account id matches this glob")
	postCmd.Flags().BoolVar(&postDryRun, "dry-run", false, "resolve and list without posting")
	postCmd.Flags().BoolVar(&postHeadless, "headless", true, "run the browser without a visible window")
	postCmd.Flags().StringVar(&postSecrets, "secrets", "", "path to secrets file (overrides config)")
	postCmd.Flags().StringVarP(&postOut, "out", "o", "", "write a JSON report to this path")
	postCmd.Flags().IntVar(&postRetries, "max-retries", -1, "retries per job (overrides config)")
	postCmd.Flags().StringVar(&postFormat, "format", "plain", "body preview format for --dry-run (plain or html)")
	postCmd.Flags().BoolVarP(&postQuiet, "quiet", "q", false, "only print failures and the summary")
}

func runPost(cmd *cobra.Command, args []string) error {
	if err := validateSelection(); err != nil {
		return err
	}

	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	applyOverrides(cmd, &cfg)
	secretsFile := cfg.SecretsFile
	if postSecrets != "" {
		secretsFile = postSecrets
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	result := input.LoadFile(args[0])
	opts := []report.Option{}
	if postQuiet {
		opts = append(opts, report.Quiet())
	}
	rep := report.New(opts...)
	if !result.Valid {
		rep.Validation(result, args[0])
		return errors.New("job file is invalid")
	}

	resolver, err := newResolver(secretsFile, log)
	if err != nil {
		return err
	}

	filter := buildFilter()
	if postDryRun {
		format := render.Format(postFormat)
		if format != render.FormatPlain && format != render.FormatHTML {
			return fmt.Errorf("unknown --format %q (plain or html)", postFormat)
		}
		selected, err := filter.Apply(result.Jobs)
		if err != nil {
			return err
		}
		rep.DryRun(selected, resolver, format)
		return nil
	}

	log.Info("starting batch",
		zap.String("run_id", rep.RunID()),
		zap.Int("jobs", len(result.Jobs)),
		zap.Bool("headless", cfg.Headless))

	launcher, err := browser.NewLauncher(cfg, browser.SystemClipboard(), log)
	if err != nil {
		return fmt.Errorf("browser setup: %w", err)
	}
	defer launcher.Shutdown()

	orch := orchestrator.New(orchestrator.NewOpener(launcher), resolver, cfg, log,
		orchestrator.WithProgress(rep.Progress))
	batch, err := orch.PostAll(result.Jobs, filter)
	if err != nil {
		return err
	}

	if err := rep.Batch(batch, postOut); err != nil {
		return err
	}
	if batch.HasFailures() {
		return fmt.Errorf("%d of %d job(s) failed", batch.Failed, batch.Total)
	}
	return nil
}

// applyOverrides copies flag values into the loaded config, only for flags
// the user actually passed. Flag defaults never clobber file or env settings.
func applyOverrides(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("headless") {
		cfg.Headless = postHeadless
	}
	if cmd.Flags().Changed("max-retries") {
		cfg.MaxRetries = postRetries
	}
}

// validateSelection enforces exactly one of --all, --index, --account.
func validateSelection() error {
	selected := 0
	if postAll {
		selected++
	}
	if postIndex >= 0 {
		selected++
	}
	if postAccount != "" {
		selected++
	}
	if selected != 1 {
		return errors.New("exactly one of --all, --index, or --account is required")
	}
	return nil
}

func buildFilter() orchestrator.Filter {
	filter := orchestrator.Filter{Account: postAccount}
	if postIndex >= 0 {
		index := postIndex
		filter.Index = &index
	}
	return filter
}
