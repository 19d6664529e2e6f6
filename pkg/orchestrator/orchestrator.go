// Package orchestrator sequences the posting pipeline across accounts: it
// filters and groups jobs, resolves one credential per account, drives one
// authenticated session per group, and aggregates per-job outcomes into a
// batch report. Everything runs strictly sequentially; one browser session
// is live at a time.
package orchestrator

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/entrhq/nblog/pkg/browser"
	"github.com/entrhq/nblog/pkg/config"
	"github.com/entrhq/nblog/pkg/credentials"
	"github.com/entrhq/nblog/pkg/editor"
	"github.com/entrhq/nblog/pkg/model"
	"github.com/entrhq/nblog/pkg/render"
)

// Session is the slice of a live browser session the orchestrator needs.
type Session interface {
	Driver() browser.Driver
	Login(accountID, secret string) error
	Close()
}

// Opener opens one session per account group.
type Opener interface {
	Open(headless bool) (Session, error)
}

type launcherOpener struct {
	launcher *browser.Launcher
}

func (o launcherOpener) Open(headless bool) (Session, error) {
	session, err := o.launcher.Open(headless)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// NewOpener adapts a browser launcher to the Opener contract.
func NewOpener(launcher *browser.Launcher) Opener {
	return launcherOpener{launcher: launcher}
}

// Publisher publishes one rendered post on an authenticated session.
type Publisher interface {
	Publish(post editor.Post) editor.Result
}

// PublisherFactory builds the publisher for one job's blog.
type PublisherFactory func(drv browser.Driver, blogID string) Publisher

// ProgressFunc observes batch progress after every job. It never affects
// control flow.
type ProgressFunc func(completed, total int, message string)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithProgress installs a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(o *Orchestrator) { o.progress = fn }
}

// WithPublisherFactory overrides how per-job publishers are built.
func WithPublisherFactory(factory PublisherFactory) Option {
	return func(o *Orchestrator) { o.publisherFor = factory }
}

// Orchestrator drives a whole batch. Construct with New; not safe for
// concurrent use.
type Orchestrator struct {
	opener       Opener
	resolver     *credentials.Resolver
	cfg          config.Config
	log          *zap.Logger
	progress     ProgressFunc
	publisherFor PublisherFactory
	sleep        func(time.Duration)
}

func New(opener Opener, resolver *credentials.Resolver, cfg config.Config, log *zap.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		opener:   opener,
		resolver: resolver,
		cfg:      cfg,
		log:      log,
		progress: func(int, int, string) {},
		sleep:    time.Sleep,
	}
	o.publisherFor = func(drv browser.Driver, blogID string) Publisher {
		return editor.NewAutomaton(drv, blogID, cfg, log)
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type accountGroup struct {
	accountID string
	jobs      []model.Job
}

// PostAll publishes every job selected by the filter and returns the batch
// report. Failures are absorbed into per-job outcomes; the only error return
// is an invalid filter.
func (o *Orchestrator) PostAll(jobs []model.Job, filter Filter) (*model.BatchReport, error) {
	report := &model.BatchReport{}

	selected, err := filter.Apply(jobs)
	if err != nil {
		return nil, err
	}
	// Filter exclusions are counted as skipped; only attempted jobs get
	// recorded outcomes.
	for i := len(selected); i < len(jobs); i++ {
		report.AddSkipped()
	}
	if len(selected) == 0 {
		o.log.Warn("no jobs selected", zap.Int("input", len(jobs)))
		return report, nil
	}

	groups := groupByAccount(selected)
	total := len(selected)
	completed := 0

	for gi, group := range groups {
		o.progress(completed, total, fmt.Sprintf("processing account %s", group.accountID))

		cred := o.resolver.Resolve(group.jobs[0])
		if cred.Secret == "" {
			// No session is opened for an unresolvable account; every job in
			// the group fails with the same reason.
			o.log.Warn("no credentials available", zap.String("account", group.accountID))
			for _, job := range group.jobs {
				o.record(report, &completed, total, failedOutcome(job, model.ReasonCredentialMissing, "no credentials available"))
			}
		} else {
			o.log.Info("credentials resolved",
				zap.String("account", group.accountID),
				zap.String("source", string(cred.Source)),
				zap.String("secret", cred.Masked()))
			o.postGroup(group, cred, report, &completed, total)
		}

		if gi < len(groups)-1 {
			o.sleep(o.cfg.AccountDelay)
		}
	}
	return report, nil
}

// postGroup opens one session, logs in once, and posts every job in the
// group. The session is closed on every exit path before the next group
// starts.
func (o *Orchestrator) postGroup(group accountGroup, cred credentials.ResolvedCredential, report *model.BatchReport, completed *int, total int) {
	session, err := o.opener.Open(o.cfg.Headless)
	if err != nil {
		o.log.Error("session launch failed", zap.String("account", group.accountID), zap.Error(err))
		for _, job := range group.jobs {
			o.record(report, completed, total, failedOutcome(job, model.ReasonSessionLaunch, err.Error()))
		}
		return
	}
	defer session.Close()

	if err := session.Login(group.accountID, cred.Secret); err != nil {
		o.log.Error("login failed", zap.String("account", group.accountID), zap.Error(err))
		for _, job := range group.jobs {
			o.record(report, completed, total, failedOutcome(job, model.ReasonAuthenticationFailed, err.Error()))
		}
		return
	}

	for ji, job := range group.jobs {
		o.record(report, completed, total, o.postOne(session, job))
		if ji < len(group.jobs)-1 {
			o.sleep(o.cfg.PostDelay)
		}
	}
}

// postOne runs the automaton for one job and converts its result to the
// job's single outcome. A panic anywhere inside the pipeline is contained
// here so one job can never abort the rest of the batch.
func (o *Orchestrator) postOne(session Session, job model.Job) (outcome model.PostOutcome) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Error("job panicked", zap.Int("index", job.Index), zap.Any("panic", r))
			outcome = failedOutcome(job, model.ReasonUnexpected, fmt.Sprintf("unexpected error: %v", r))
		}
	}()

	post := editor.Post{
		Title:    job.Content.Title,
		Body:     render.Content(job.Content, render.FormatPlain),
		Tags:     job.Content.Tags(),
		Settings: model.DefaultPublishSettings(),
	}

	publisher := o.publisherFor(session.Driver(), job.BlogID())
	result := publisher.Publish(post)

	if result.Success {
		return model.PostOutcome{
			Index:     job.Index,
			AccountID: job.AccountID,
			Title:     job.Content.Title,
			Success:   true,
			PostURL:   result.PostURL,
			Timestamp: time.Now(),
		}
	}

	reason := model.ReasonAutomationFailed
	message := "post failed"
	if result.Err != nil {
		message = result.Err.Error()
		if errors.Is(result.Err, editor.ErrVerificationFailed) {
			reason = model.ReasonVerificationFailed
		}
	}
	return failedOutcome(job, reason, message)
}

func (o *Orchestrator) record(report *model.BatchReport, completed *int, total int, outcome model.PostOutcome) {
	report.AddResult(outcome)
	*completed++

	status := "FAILED"
	if outcome.Success {
		status = "SUCCESS"
	}
	o.progress(*completed, total, fmt.Sprintf("%s: %s", status, truncate(outcome.Title, 30)))
}

func failedOutcome(job model.Job, reason model.Reason, message string) model.PostOutcome {
	return model.PostOutcome{
		Index:        job.Index,
		AccountID:    job.AccountID,
		Title:        job.Content.Title,
		Success:      false,
		Reason:       reason,
		ErrorMessage: message,
		Timestamp:    time.Now(),
	}
}

// groupByAccount buckets jobs by account id, preserving first-seen group
// order and the original relative order within each group.
func groupByAccount(jobs []model.Job) []accountGroup {
	index := make(map[string]int)
	var groups []accountGroup
	for _, job := range jobs {
		if i, ok := index[job.AccountID]; ok {
			groups[i].jobs = append(groups[i].jobs, job)
			continue
		}
		index[job.AccountID] = len(groups)
		groups = append(groups, accountGroup{accountID: job.AccountID, jobs: []model.Job{job}})
	}
	return groups
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
