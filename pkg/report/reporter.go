// Package report renders run results for humans and machines: a styled
// console summary plus an optional JSON report file. The account secret is
// never part of either output; credential status is shown masked.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/entrhq/nblog/pkg/credentials"
	"github.com/entrhq/nblog/pkg/input"
	"github.com/entrhq/nblog/pkg/model"
	"github.com/entrhq/nblog/pkg/render"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

// Reporter writes human-readable run output and, when configured, a JSON
// report file. One Reporter covers one command invocation.
type Reporter struct {
	out     io.Writer
	quiet   bool
	runID   uuid.UUID
	started time.Time
}

// Option configures a Reporter.
type Option func(*Reporter)

// Quiet suppresses per-job success lines and warnings; failures are always
// printed.
func Quiet() Option {
	return func(r *Reporter) { r.quiet = true }
}

// WithOutput redirects console output, used by tests.
func WithOutput(out io.Writer) Option {
	return func(r *Reporter) { r.out = out }
}

func New(opts ...Option) *Reporter {
	r := &Reporter{
		out:     os.Stdout,
		runID:   uuid.New(),
		started: time.Now(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunID identifies this invocation in logs and the JSON report.
func (r *Reporter) RunID() string {
	return r.runID.String()
}

// Progress is a per-job observation hook suitable for the orchestrator's
// progress callback.
func (r *Reporter) Progress(completed, total int, message string) {
	if r.quiet {
		return
	}
	fmt.Fprintf(r.out, "%s %s\n", dimStyle.Render(fmt.Sprintf("[%d/%d]", completed, total)), message)
}

// Validation prints the findings of one input file check.
func (r *Reporter) Validation(result *input.Result, path string) {
	if r.quiet && result.Valid && len(result.Warnings) == 0 {
		return
	}

	fmt.Fprintf(r.out, "\n%s %s\n", titleStyle.Render("Validation Report:"), path)
	if result.Valid {
		fmt.Fprintf(r.out, "  %s  %d jobs\n", okStyle.Render("VALID"), len(result.Jobs))
	} else {
		fmt.Fprintf(r.out, "  %s  %d error(s)\n", failStyle.Render("INVALID"), len(result.Errors))
	}
	for _, issue := range result.Errors {
		fmt.Fprintf(r.out, "  %s %s\n", failStyle.Render("error"), issue)
	}
	if !r.quiet {
		for _, issue := range result.Warnings {
			fmt.Fprintf(r.out, "  %s %s\n", warnStyle.Render("warning"), issue)
		}
	}
}

// Batch prints the batch summary, per-failure detail, and writes the JSON
// report when outFile is non-empty.
func (r *Reporter) Batch(batch *model.BatchReport, outFile string) error {
	elapsed := time.Since(r.started)

	fmt.Fprintf(r.out, "\n%s\n", sectionStyle.Render("BATCH POSTING REPORT"))
	fmt.Fprintf(r.out, "  Total:      %d\n", batch.Total)
	fmt.Fprintf(r.out, "  Successful: %s\n", okStyle.Render(fmt.Sprintf("%d", batch.Successful)))
	failedText := fmt.Sprintf("%d", batch.Failed)
	if batch.Failed > 0 {
		failedText = failStyle.Render(failedText)
	}
	fmt.Fprintf(r.out, "  Failed:     %s\n", failedText)
	fmt.Fprintf(r.out, "  Skipped:    %d\n", batch.Skipped)
	fmt.Fprintf(r.out, "  Duration:   %.1fs\n", elapsed.Seconds())

	if batch.Failed > 0 {
		fmt.Fprintf(r.out, "\n%s\n", titleStyle.Render("Failed jobs:"))
		for _, outcome := range batch.Results {
			if outcome.Success {
				continue
			}
			fmt.Fprintf(r.out, "  %s [%d] %s (%s): %s\n",
				failStyle.Render("FAILED"),
				outcome.Index, outcome.AccountID, outcome.Reason, outcome.ErrorMessage)
		}
	}

	if outFile == "" {
		return nil
	}
	if err := r.WriteJSON(batch, outFile); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "\nreport written to %s\n", outFile)
	return nil
}

// jsonReport is the on-disk report envelope. Outcomes carry no secrets by
// construction.
type jsonReport struct {
	Timestamp       time.Time           `json:"timestamp"`
	RunID           string              `json:"run_id"`
	DurationSeconds float64             `json:"duration_seconds"`
	Summary         jsonSummary         `json:"summary"`
	Results         []model.PostOutcome `json:"results"`
}

type jsonSummary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
	Skipped    int `json:"skipped"`
}

// WriteJSON writes the machine-readable report.
func (r *Reporter) WriteJSON(batch *model.BatchReport, path string) error {
	results := batch.Results
	if results == nil {
		results = []model.PostOutcome{}
	}
	envelope := jsonReport{
		Timestamp:       time.Now(),
		RunID:           r.runID.String(),
		DurationSeconds: time.Since(r.started).Seconds(),
		Summary: jsonSummary{
			Total:      batch.Total,
			Successful: batch.Successful,
			Failed:     batch.Failed,
			Skipped:    batch.Skipped,
		},
		Results: results,
	}
	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// DryRun lists what a post run would do: each selected job with its tags and
// masked credential status. No secret ever reaches the output.
func (r *Reporter) DryRun(jobs []model.Job, resolver *credentials.Resolver, format render.Format) {
	fmt.Fprintf(r.out, "\n%s\n", sectionStyle.Render("DRY RUN - no posts will be made"))
	fmt.Fprintf(r.out, "  Jobs selected: %d\n", len(jobs))

	for _, job := range jobs {
		cred := resolver.Resolve(job)
		status := okStyle.Render("OK")
		if cred.Secret == "" {
			status = failStyle.Render("MISSING")
		}
		fmt.Fprintf(r.out, "\n  [%d] %s\n", job.Index, job.AccountID)
		fmt.Fprintf(r.out, "      Title: %s\n", job.Content.Title)
		if tags := job.Content.Tags(); len(tags) > 0 {
			fmt.Fprintf(r.out, "      Tags: %v\n", tags)
		}
		body := render.Content(job.Content, format)
		fmt.Fprintf(r.out, "      Body (%s): %s\n", format, clip(strings.ReplaceAll(body, "\n", " "), 80))
		fmt.Fprintf(r.out, "      Credentials: %s (%s, source: %s)\n", status, cred.Masked(), cred.Source)
	}
	fmt.Fprintln(r.out)
}

func clip(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

// Doctor prints the environment health check: browser availability and
// credential status for every account in the job file.
func (r *Reporter) Doctor(jobs []model.Job, resolver *credentials.Resolver, browserOK bool, browserDetail string) {
	fmt.Fprintf(r.out, "\n%s\n", sectionStyle.Render("SYSTEM HEALTH CHECK"))

	if browserOK {
		fmt.Fprintf(r.out, "  %s browser: %s\n", okStyle.Render("[OK]"), browserDetail)
	} else {
		fmt.Fprintf(r.out, "  %s browser: %s\n", failStyle.Render("[!!]"), browserDetail)
	}

	if len(jobs) == 0 {
		return
	}
	missing := resolver.Check(jobs)
	if len(missing) == 0 {
		fmt.Fprintf(r.out, "  %s all accounts have credentials\n", okStyle.Render("[OK]"))
		return
	}
	fmt.Fprintf(r.out, "  %s %d account(s) missing credentials:\n", failStyle.Render("[!!]"), len(missing))
	for _, accountID := range missing {
		fmt.Fprintf(r.out, "     - %s\n", accountID)
		fmt.Fprintf(r.out, "       set: export %s=<password>\n", credentials.EnvKey(accountID))
	}
}
