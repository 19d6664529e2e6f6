// Package credentials resolves account secrets from an ordered set of
// sources. Secrets never reach any log sink in clear text; callers display
// the masked form only.
package credentials

import (
	"os"
	"strings"

	"github.com/entrhq/nblog/pkg/model"
)

// EnvPrefix is the fixed prefix for per-account environment overrides.
const EnvPrefix = "NBLOG_PW_"

// maskLen caps the number of placeholder characters in a masked secret.
const maskLen = 8

// Source identifies where a secret was resolved from.
type Source string

const (
	SourceEnv         Source = "env"
	SourceSecretsFile Source = "secrets-file"
	SourceInline      Source = "inline"
	SourceNone        Source = "none"
)

// ResolvedCredential is a secret bound to its account and provenance.
// It is never persisted and must never be logged verbatim.
type ResolvedCredential struct {
	AccountID string
	Secret    string
	Source    Source
}

// Masked returns a fixed-alphabet placeholder for the secret, one asterisk
// per character capped at eight, or "(empty)" when no secret was resolved.
func (c ResolvedCredential) Masked() string {
	return Mask(c.Secret)
}

// Mask renders a secret for safe display.
func Mask(secret string) string {
	if secret == "" {
		return "(empty)"
	}
	n := len(secret)
	if n > maskLen {
		n = maskLen
	}
	return strings.Repeat("*", n)
}

// Resolver resolves job secrets with a fixed precedence: environment
// override, then the secrets store loaded at construction, then the secret
// embedded in the job itself. Resolution is a pure function of the job and
// the sources; resolving the same job twice yields identical results.
type Resolver struct {
	secrets   map[string]string
	lookupEnv func(string) (string, bool)
}

// NewResolver creates a resolver over an already-loaded secrets store.
// A nil store is valid and simply never matches.
func NewResolver(secrets map[string]string) *Resolver {
	return &Resolver{
		secrets:   secrets,
		lookupEnv: os.LookupEnv,
	}
}

// Resolve returns the credential for a job. An unresolvable secret is not an
// error: the result carries SourceNone and an empty secret, which the batch
// layer treats as a skip signal.
func (r *Resolver) Resolve(job model.Job) ResolvedCredential {
	if secret, ok := r.lookupEnv(EnvKey(job.AccountID)); ok && secret != "" {
		return ResolvedCredential{AccountID: job.AccountID, Secret: secret, Source: SourceEnv}
	}
	if secret, ok := r.secrets[job.AccountID]; ok && secret != "" {
		return ResolvedCredential{AccountID: job.AccountID, Secret: secret, Source: SourceSecretsFile}
	}
	if job.Secret != "" {
		return ResolvedCredential{AccountID: job.AccountID, Secret: job.Secret, Source: SourceInline}
	}
	return ResolvedCredential{AccountID: job.AccountID, Source: SourceNone}
}

// Check returns the account ids, in first-seen order, for which no source
// yields a secret. Each account is reported once.
func (r *Resolver) Check(jobs []model.Job) []string {
	var missing []string
	seen := make(map[string]bool)
	for _, job := range jobs {
		if seen[job.AccountID] {
			continue
		}
		seen[job.AccountID] = true
		if r.Resolve(job).Source == SourceNone {
			missing = append(missing, job.AccountID)
		}
	}
	return missing
}

// EnvKey builds the environment variable name for an account id: "@" becomes
// "_at_" and "." becomes "_" before any remaining non-alphanumeric character
// is replaced with "_", then the whole name is upper-cased and prefixed.
func EnvKey(accountID string) string {
	s := strings.ReplaceAll(accountID, "@", "_at_")
	s = strings.ReplaceAll(s, ".", "_")
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return EnvPrefix + strings.ToUpper(b.String())
}
