package orchestrator

import (
	"fmt"

	"github.com/gobwas/glob"

	"github.com/entrhq/nblog/pkg/model"
)

// Filter narrows a job list before posting. Index selects a single job by
// its original position; Account is a glob pattern matched against account
// ids ("*@naver.com" selects every job on that domain). Both set means both
// must match.
type Filter struct {
	Index   *int
	Account string
}

// Apply returns the jobs selected by the filter, preserving input order.
func (f Filter) Apply(jobs []model.Job) ([]model.Job, error) {
	var matcher glob.Glob
	if f.Account != "" {
		var err error
		matcher, err = glob.Compile(f.Account)
		if err != nil {
			return nil, fmt.Errorf("invalid account pattern %q: %w", f.Account, err)
		}
	}

	var selected []model.Job
	for _, job := range jobs {
		if f.Index != nil && job.Index != *f.Index {
			continue
		}
		if matcher != nil && !matcher.Match(job.AccountID) {
			continue
		}
		selected = append(selected, job)
	}
	return selected, nil
}
