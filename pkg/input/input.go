// Package input loads and validates the blog post job file: a JSON array of
// account/content objects with a fixed key schema. Structural validation is
// schema-driven; semantic checks that the pipeline can recover from are
// reported as warnings instead of errors.
package input

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/entrhq/nblog/pkg/model"
)

const jobSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "minItems": 1,
  "items": {
    "type": "object",
    "required": ["sns_id", "sns_upload_cont"],
    "properties": {
      "sns_id": { "type": "string", "minLength": 1 },
      "sns_pw": { "type": "string" },
      "sns_upload_cont": {
        "type": "object",
        "required": ["blog_title"],
        "properties": {
          "blog_title": { "type": "string", "minLength": 1 }
        }
      }
    }
  }
}`

var compiledSchema = func() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("jobs.schema.json", strings.NewReader(jobSchema)); err != nil {
		panic(err)
	}
	return compiler.MustCompile("jobs.schema.json")
}()

var urlPattern = regexp.MustCompile(`(?i)^https?://`)

// Issue is one validation finding, located by array index and JSON path.
// Index is -1 for findings about the file as a whole.
type Issue struct {
	Index   int    `json:"index"`
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Index < 0 {
		return i.Message
	}
	return fmt.Sprintf("[%d]%s: %s", i.Index, i.Path, i.Message)
}

// Result carries validation findings plus the parsed jobs when the input is
// structurally valid. Warnings never affect validity.
type Result struct {
	Valid    bool
	Errors   []Issue
	Warnings []Issue
	Jobs     []model.Job
}

func (r *Result) addError(issue Issue) {
	r.Errors = append(r.Errors, issue)
	r.Valid = false
}

func (r *Result) addWarning(issue Issue) {
	r.Warnings = append(r.Warnings, issue)
}

// Summary renders a short human-readable verdict.
func (r *Result) Summary() string {
	var b strings.Builder
	if r.Valid {
		fmt.Fprintf(&b, "validation passed: %d jobs", len(r.Jobs))
	} else {
		fmt.Fprintf(&b, "validation failed: %d error(s)", len(r.Errors))
	}
	if len(r.Warnings) > 0 {
		fmt.Fprintf(&b, ", %d warning(s)", len(r.Warnings))
	}
	return b.String()
}

// LoadFile reads and validates a job file. I/O and syntax problems become
// findings on the result rather than a separate error, so callers have one
// reporting path.
func LoadFile(path string) *Result {
	data, err := os.ReadFile(path)
	if err != nil {
		result := &Result{Valid: true}
		result.addError(Issue{Index: -1, Message: fmt.Sprintf("cannot read %s: %v", path, err)})
		return result
	}
	return Validate(data)
}

// Validate checks raw JSON against the job schema and the semantic rules,
// returning parsed jobs on success.
func Validate(data []byte) *Result {
	result := &Result{Valid: true}

	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		result.addError(Issue{Index: -1, Message: fmt.Sprintf("invalid JSON syntax: %v", err)})
		return result
	}

	if err := compiledSchema.Validate(decoded); err != nil {
		for _, issue := range schemaIssues(err) {
			result.addError(issue)
		}
		return result
	}

	var jobs []model.Job
	if err := json.Unmarshal(data, &jobs); err != nil {
		result.addError(Issue{Index: -1, Message: fmt.Sprintf("cannot parse jobs: %v", err)})
		return result
	}
	for i := range jobs {
		jobs[i].Index = i
	}
	result.Jobs = jobs

	entries, _ := decoded.([]any)
	for i, job := range jobs {
		var raw map[string]any
		if i < len(entries) {
			raw, _ = entries[i].(map[string]any)
		}
		checkJob(result, i, job, raw)
	}
	checkDuplicates(result, jobs)

	return result
}

// checkJob applies the recoverable-issue rules to one entry.
func checkJob(result *Result, index int, job model.Job, raw map[string]any) {
	if raw != nil {
		if _, ok := raw["sns_pw"]; !ok {
			result.addWarning(Issue{
				Index:   index,
				Path:    ".sns_pw",
				Message: "sns_pw missing (can be provided via environment or secrets file)",
			})
		}
	}

	c := job.Content
	urlFields := []struct {
		name  string
		value string
	}{
		{"blog_title_img", c.TitleImage},
		{"blog_title_img2", c.TitleImage2},
		{"blog_title_img3", c.TitleImage3},
		{"site_img1", c.SectionImage1},
		{"site_img2", c.SectionImage2},
		{"site_cll_img", c.ContactImage},
	}
	for _, f := range urlFields {
		if f.value != "" && !urlPattern.MatchString(f.value) {
			result.addWarning(Issue{
				Index:   index,
				Path:    ".sns_upload_cont." + f.name,
				Message: fmt.Sprintf("invalid URL format: %s", truncate(f.value, 50)),
			})
		}
	}

	if c.TagList != "" {
		if strings.HasSuffix(c.TagList, ",") {
			result.addWarning(Issue{
				Index:   index,
				Path:    ".sns_upload_cont.site_tag",
				Message: "tags have trailing comma (will be normalized)",
			})
		}
		empty := 0
		for _, tag := range strings.Split(c.TagList, ",") {
			if strings.TrimSpace(tag) == "" {
				empty++
			}
		}
		if empty > 0 {
			result.addWarning(Issue{
				Index:   index,
				Path:    ".sns_upload_cont.site_tag",
				Message: fmt.Sprintf("%d empty tag(s) will be dropped", empty),
			})
		}
	}
}

// checkDuplicates warns when the same title repeats on the same account,
// which usually means a copy-paste slip in the input file.
func checkDuplicates(result *Result, jobs []model.Job) {
	seen := make(map[string]int)
	for _, job := range jobs {
		key := job.AccountID + "\x00" + job.Content.Title
		if first, ok := seen[key]; ok {
			result.addWarning(Issue{
				Index:   job.Index,
				Path:    ".sns_upload_cont.blog_title",
				Message: fmt.Sprintf("duplicate of entry %d (same account and title)", first),
			})
			continue
		}
		seen[key] = job.Index
	}
}

// schemaIssues flattens a schema validation error tree into findings with
// the entry index recovered from the instance location.
func schemaIssues(err error) []Issue {
	validationErr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []Issue{{Index: -1, Message: err.Error()}}
	}

	var issues []Issue
	var walk func(node *jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			index, path := splitLocation(node.InstanceLocation)
			issues = append(issues, Issue{
				Index:   index,
				Path:    path,
				Message: node.Message,
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(validationErr)
	return issues
}

// splitLocation turns "/3/sns_upload_cont/blog_title" into (3,
// ".sns_upload_cont.blog_title").
func splitLocation(location string) (int, string) {
	parts := strings.Split(strings.TrimPrefix(location, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		return -1, ""
	}
	index, err := strconv.Atoi(parts[0])
	if err != nil {
		return -1, location
	}
	if len(parts) == 1 {
		return index, ""
	}
	return index, "." + strings.Join(parts[1:], ".")
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
