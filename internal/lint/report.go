// Package lint checks a docs tree for Markdown validity, front-matter
// completeness and internal link resolution.
package lint

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Severity grades an issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a single lint finding. Line is 1-based in the original file, 0
// when the finding applies to the whole file.
type Issue struct {
	Path     string   `json:"path"`
	Line     int      `json:"line"`
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	location := i.Path
	if i.Line > 0 {
		location = fmt.Sprintf("%s:%d", i.Path, i.Line)
	}
	return fmt.Sprintf("%s: %s [%s] %s", location, i.Severity, i.Rule, i.Message)
}

// Report aggregates the issues of a lint run.
type Report struct {
	Issues   []Issue `json:"issues"`
	Files    int     `json:"files"`
	Errors   int     `json:"errors"`
	Warnings int     `json:"warnings"`
	Strict   bool    `json:"strict"`
}

func newReport(files int, strict bool, issues []Issue) *Report {
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Rule != b.Rule {
			return a.Rule < b.Rule
		}
		return a.Message < b.Message
	})
	report := &Report{Issues: issues, Files: files, Strict: strict}
	for _, issue := range issues {
		switch issue.Severity {
		case SeverityError:
			report.Errors++
		case SeverityWarning:
			report.Warnings++
		}
	}
	return report
}

// Failed reports whether the run should fail: any error, or any warning in
// strict mode.
func (r *Report) Failed() bool {
	if r == nil {
		return false
	}
	return r.Errors > 0 || (r.Strict && r.Warnings > 0)
}

// ByRule counts issues per rule.
func (r *Report) ByRule() map[string]int {
	counts := map[string]int{}
	for _, issue := range r.Issues {
		counts[issue.Rule]++
	}
	return counts
}

// Write prints one line per issue followed by a summary line.
func (r *Report) Write(w io.Writer) error {
	var b strings.Builder
	for _, issue := range r.Issues {
		b.WriteString(issue.String())
		b.WriteByte('\n')
	}
	status := "passed"
	if r.Failed() {
		status = "failed"
	}
	fmt.Fprintf(&b, "\nChecked %d file(s): %d error(s), %d warning(s). Lint %s.\n", r.Files, r.Errors, r.Warnings, status)
	_, err := io.WriteString(w, b.String())
	return err
}
