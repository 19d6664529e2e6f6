package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/entrhq/nblog/pkg/input"
	"github.com/entrhq/nblog/pkg/report"
)

var validateQuiet bool

var validateCmd = &cobra.Command{
	Use:   "validate <jobs.json>",
	Short: "Validate a job file without posting",
	Long: `Check a job file against the input schema and report every error and
warning. Exits non-zero when the file is invalid.

Examples:
  nblog validate jobs.json
  nblog validate jobs.json --quiet`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVarP(&validateQuiet, "quiet", "q", false, "only print errors")
}

func runValidate(cmd *cobra.Command, args []string) error {
	result := input.LoadFile(args[0])

	opts := []report.Option{}
	if validateQuiet {
		opts = append(opts, report.Quiet())
	}
	report.New(opts...).Validation(result, args[0])

	if !result.Valid {
		return errors.New("job file is invalid")
	}
	return nil
}
