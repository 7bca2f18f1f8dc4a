package generatecmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-styleguide/internal/changelog"
	"github.com/goliatone/go-styleguide/internal/dashboard"
	"github.com/goliatone/go-styleguide/internal/lint"
	"github.com/goliatone/go-styleguide/internal/ratio"
)

type stubChangelog struct{}

func (stubChangelog) Generate(_ context.Context, output string) (*changelog.Result, error) {
	return &changelog.Result{Fetched: 3, Published: 2, Output: output}, nil
}

type stubDashboard struct {
	lint *dashboard.LintSummary
}

func (s *stubDashboard) Generate(_ context.Context, _ string, lint *dashboard.LintSummary) (*dashboard.Data, []byte, error) {
	s.lint = lint
	return &dashboard.Data{
		Ratio: &ratio.Report{
			Target:  3,
			Overall: 3.5,
			Guides:  []ratio.GuideStat{{Name: "bash", CodeLines: 35, TextLines: 10, Ratio: 3.5}},
		},
		Lint: lint,
	}, []byte("# Project Status\n"), nil
}

type stubLinter struct{}

func (stubLinter) Run(context.Context, string) (*lint.Report, error) {
	return &lint.Report{Files: 5, Errors: 1, Warnings: 2}, nil
}

func TestChangelogHandler(t *testing.T) {
	var out bytes.Buffer
	err := NewChangelogHandler(stubChangelog{}, nil).Execute(context.Background(), ChangelogCommand{File: "docs/changelog.md", Output: &out})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	want := "Fetching releases from GitHub...\nFound 3 releases\n✓ Changelog generated: docs/changelog.md\n"
	if out.String() != want {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestChangelogHandlerRequiresFile(t *testing.T) {
	err := NewChangelogHandler(stubChangelog{}, nil).Execute(context.Background(), ChangelogCommand{})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDashboardHandlerWithLintAndMetrics(t *testing.T) {
	generator := &stubDashboard{}
	metrics := filepath.Join(t.TempDir(), "metrics", "styleguide.prom")

	var out bytes.Buffer
	msg := DashboardCommand{File: "docs/project_status.md", MetricsFile: metrics, IncludeLint: true, Output: &out}
	if err := NewDashboardHandler(generator, stubLinter{}, nil).Execute(context.Background(), msg); err != nil {
		t.Fatalf("execute: %v", err)
	}

	if generator.lint == nil || generator.lint.Errors != 1 || !generator.lint.Failed {
		t.Fatalf("expected lint summary to be passed through, got %+v", generator.lint)
	}
	if !strings.Contains(out.String(), "Code-to-text ratio: 3.50:1 (1/1 guides pass)") {
		t.Fatalf("unexpected output %q", out.String())
	}
	data, err := os.ReadFile(metrics)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	if !strings.Contains(string(data), "styleguide_code_ratio_overall 3.5") {
		t.Fatalf("unexpected metrics %s", data)
	}
}

func TestDashboardHandlerWithoutLinter(t *testing.T) {
	generator := &stubDashboard{}
	msg := DashboardCommand{File: "docs/project_status.md", IncludeLint: true}
	if err := NewDashboardHandler(generator, nil, nil).Execute(context.Background(), msg); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if generator.lint != nil {
		t.Fatalf("expected no lint summary, got %+v", generator.lint)
	}
}
