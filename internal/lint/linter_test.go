package lint

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/goliatone/go-styleguide/internal/validation"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const validGuide = `---
title: Bash Style Guide
description: Shell conventions
author: Tyler Dukes
tags: [bash, shell]
category: Language Guides
status: active
version: 1.2.0
---

# Bash Style Guide

See [Python](python.md#imports) and [setup](#setup).

## Setup

` + "```bash\nset -euo pipefail\n```\n"

const pythonGuide = `---
title: Python Style Guide
description: Python conventions
author: Tyler Dukes
tags: [python]
category: Language Guides
status: draft
---

# Python Style Guide

## Imports

Sorted.
`

func defaultOptions() Options {
	return Options{
		RequiredKeys:        []string{"title", "description", "author", "tags", "category", "status"},
		AllowedStatuses:     []string{"active", "draft", "review", "deprecated", "archived"},
		ModuleTagExtensions: []string{".sh", ".py", ".yml"},
		Workers:             2,
	}
}

func TestRunCleanTree(t *testing.T) {
	fsys := fstest.MapFS{
		"02_language_guides/bash.md":   {Data: []byte(validGuide)},
		"02_language_guides/python.md": {Data: []byte(pythonGuide)},
		"05_examples/deploy.sh":        {Data: []byte("#!/bin/bash\n# @module: deploy\n")},
		"05_examples/empty.py":         {Data: []byte("\n")},
		"assets/logo.svg":              {Data: []byte("<svg/>")},
	}

	report, err := New(fsys, defaultOptions(), nil).Run(context.Background(), ".")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Issues) != 0 {
		t.Fatalf("expected no issues, got %v", report.Issues)
	}
	if report.Files != 4 || report.Failed() {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestRunReportsEveryRule(t *testing.T) {
	broken := `---
title: Broken
description: ""
tags: [Good Tag, bash, bash]
category: Guides
status: retired
version: 1.0-beta
---

# Broken

# Second Title

[missing](nope.md) [bad anchor](python.md#nowhere) [self](#absent) [outside](../../etc/passwd)
[external](https://example.com) [mail](mailto:a@b.c) [site](/abs/path)

**Version**: 1.0

` + "```go\nfunc main() {}\n"

	fsys := fstest.MapFS{
		"guides/broken.md":  {Data: []byte(broken)},
		"guides/python.md":  {Data: []byte(pythonGuide)},
		"guides/nofront.md": {Data: []byte("# No front matter\n")},
		"scripts/run.sh":    {Data: []byte("echo hi\n")},
	}

	report, err := New(fsys, defaultOptions(), nil).Run(context.Background(), ".")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	got := map[string][]int{}
	for _, issue := range report.Issues {
		key := issue.Path + " " + issue.Rule
		got[key] = append(got[key], issue.Line)
	}
	want := map[string][]int{
		"guides/broken.md frontmatter-required": {1, 3},
		"guides/broken.md frontmatter-status":   {6},
		"guides/broken.md frontmatter-tags":     {4, 4},
		"guides/broken.md frontmatter-version":  {7},
		"guides/broken.md heading-single-h1":    {12},
		"guides/broken.md links-internal":       {14, 14, 14, 14},
		"guides/broken.md static-footer":        {17},
		"guides/broken.md code-fence-closed":    {19},
		"guides/nofront.md frontmatter-present": {1},
		"scripts/run.sh module-tag":             {0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s\n%v", diff, report.Issues)
	}
	if !report.Failed() || report.Warnings != 1 {
		t.Fatalf("expected failed report with one warning, got %+v", report)
	}
}

func TestDisabledRulesAndStrictMode(t *testing.T) {
	source := strings.Replace(validGuide, "## Setup", "## Setup\n\n**Last Updated**: 2025-01-01", 1)
	fsys := fstest.MapFS{
		"bash.md":   {Data: []byte(source)},
		"python.md": {Data: []byte(pythonGuide)},
	}

	opts := defaultOptions()
	report, err := New(fsys, opts, nil).Run(context.Background(), ".")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Failed() || report.Warnings != 1 {
		t.Fatalf("expected a single non-failing warning, got %+v", report)
	}

	opts.Strict = true
	report, err = New(fsys, opts, nil).Run(context.Background(), ".")
	if err != nil {
		t.Fatalf("Run strict: %v", err)
	}
	if !report.Failed() {
		t.Fatal("expected strict mode to fail on warnings")
	}

	opts.Disabled = []string{"static-footer"}
	linter := New(fsys, opts, nil)
	for _, name := range linter.Rules() {
		if name == "static-footer" {
			t.Fatal("expected static-footer to be disabled")
		}
	}
	report, err = linter.Run(context.Background(), ".")
	if err != nil {
		t.Fatalf("Run disabled: %v", err)
	}
	if report.Failed() {
		t.Fatalf("expected disabled rule to silence warning, got %v", report.Issues)
	}
}

func TestSchemaRule(t *testing.T) {
	schema, err := validation.Compile(map[string]any{
		"type":     "object",
		"required": []any{"owner"},
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	opts := defaultOptions()
	opts.Schema = schema

	issues, err := New(fstest.MapFS{}, opts, nil).LintSource("python.md", []byte(pythonGuide))
	if err != nil {
		t.Fatalf("LintSource: %v", err)
	}
	if len(issues) != 1 || issues[0].Rule != "frontmatter-schema" {
		t.Fatalf("expected a single schema issue, got %v", issues)
	}
}

func TestMalformedFrontMatterIsReported(t *testing.T) {
	issues, err := New(fstest.MapFS{}, defaultOptions(), nil).LintSource("bad.md", []byte("---\ntitle: [unclosed\n---\n# X\n"))
	if err != nil {
		t.Fatalf("LintSource: %v", err)
	}
	if len(issues) != 1 || !strings.Contains(issues[0].Message, "malformed front-matter") {
		t.Fatalf("expected malformed front-matter issue, got %v", issues)
	}
}

func TestDirectoryLinksResolveToIndex(t *testing.T) {
	fsys := fstest.MapFS{
		"guides/index.md": {Data: []byte("---\ntitle: x\n---\n# Guides\n")},
		"home.md":         {Data: []byte("[guides](guides/) [missing](empty/)\n")},
		"empty/x.txt":     {Data: []byte("x")},
	}
	opts := defaultOptions()
	opts.Disabled = []string{"frontmatter-present"}
	issues, err := New(fsys, opts, nil).LintSource("home.md", fsys["home.md"].Data)
	if err != nil {
		t.Fatalf("LintSource: %v", err)
	}
	if len(issues) != 1 || !strings.Contains(issues[0].Message, "empty/") {
		t.Fatalf("expected only the empty directory link to fail, got %v", issues)
	}
}

func TestAnchorsFollowMkDocsSlugs(t *testing.T) {
	guide := "# Bash\n\n## Error Handling & Traps\n\n## The `set -e` Flag\n\n## Step 1: Install\n\n## Usage\n\n## Usage\n"
	index := "[traps](guide.md#error-handling-traps)\n" +
		"[flag](guide.md#the-set-e-flag)\n" +
		"[install](guide.md#step-1-install)\n" +
		"[second usage](guide.md#usage_1)\n" +
		"[goldmark style](guide.md#error-handling--traps)\n"
	fsys := fstest.MapFS{
		"guide.md": {Data: []byte(guide)},
		"index.md": {Data: []byte(index)},
	}
	opts := defaultOptions()
	opts.Disabled = []string{"frontmatter-present"}
	issues, err := New(fsys, opts, nil).LintSource("index.md", fsys["index.md"].Data)
	if err != nil {
		t.Fatalf("LintSource: %v", err)
	}
	if len(issues) != 1 || issues[0].Line != 5 || !strings.Contains(issues[0].Message, "#error-handling--traps") {
		t.Fatalf("expected only the double-hyphen anchor to fail, got %v", issues)
	}
}

func TestValidDocVersion(t *testing.T) {
	cases := map[string]bool{
		"1.0":        true,
		"1.2.3":      true,
		"v2.0":       true,
		"1":          false,
		"1.0-beta":   false,
		"1.0.0+meta": false,
		"latest":     false,
	}
	for in, want := range cases {
		if got := ValidDocVersion(in); got != want {
			t.Fatalf("ValidDocVersion(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestReportWrite(t *testing.T) {
	report := newReport(2, false, []Issue{
		{Path: "b.md", Line: 2, Rule: "r", Severity: SeverityWarning, Message: "w"},
		{Path: "a.md", Line: 5, Rule: "r", Severity: SeverityError, Message: "e"},
	})
	var buf bytes.Buffer
	if err := report.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := "a.md:5: error [r] e\nb.md:2: warning [r] w\n\nChecked 2 file(s): 1 error(s), 1 warning(s). Lint failed.\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
	if report.ByRule()["r"] != 2 {
		t.Fatalf("unexpected rule counts %v", report.ByRule())
	}
}
