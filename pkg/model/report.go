package model

import "time"

// Reason classifies why a job did not succeed. Empty on success.
type Reason string

const (
	ReasonCredentialMissing    Reason = "CredentialMissing"
	ReasonAuthenticationFailed Reason = "AuthenticationFailed"
	ReasonSessionLaunch        Reason = "SessionLaunchError"
	ReasonAutomationFailed     Reason = "AutomationStepFailed"
	ReasonVerificationFailed   Reason = "VerificationFailed"
	ReasonUnexpected           Reason = "UnexpectedError"
)

// PostOutcome is the recorded result of all attempts for one job. Exactly one
// outcome is produced per job regardless of how many internal attempts ran.
type PostOutcome struct {
	Index        int       `json:"index"`
	AccountID    string    `json:"sns_id"`
	Title        string    `json:"blog_title"`
	Success      bool      `json:"success"`
	Reason       Reason    `json:"reason,omitempty"`
	ErrorMessage string    `json:"error_message"`
	PostURL      string    `json:"post_url"`
	Timestamp    time.Time `json:"timestamp"`
}

// BatchReport aggregates the outcomes of one batch run. Totals are kept
// consistent with the result list by AddResult; nothing else mutates them.
type BatchReport struct {
	Total      int           `json:"total"`
	Successful int           `json:"successful"`
	Failed     int           `json:"failed"`
	Skipped    int           `json:"skipped"`
	Results    []PostOutcome `json:"results"`
}

// AddResult appends an outcome and updates the counters in one step.
func (r *BatchReport) AddResult(outcome PostOutcome) {
	r.Results = append(r.Results, outcome)
	r.Total++
	if outcome.Success {
		r.Successful++
	} else {
		r.Failed++
	}
}

// AddSkipped marks one job as skipped without recording an outcome.
func (r *BatchReport) AddSkipped() {
	r.Skipped++
}

// HasFailures reports whether any recorded outcome failed.
func (r *BatchReport) HasFailures() bool {
	return r.Failed > 0
}
