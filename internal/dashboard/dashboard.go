// Package dashboard renders the project health page (docs/project_status.md)
// and an optional Prometheus textfile with the same metrics.
package dashboard

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"text/template"
	"time"

	"github.com/google/renameio/v2"

	"github.com/goliatone/go-styleguide/internal/logging"
	"github.com/goliatone/go-styleguide/internal/ratio"
	"github.com/goliatone/go-styleguide/internal/releases"
	"github.com/goliatone/go-styleguide/pkg/interfaces"
)

//go:embed templates/project_status.md.tmpl
var templateFS embed.FS

// ProjectStats are counts derived from the repository tree.
type ProjectStats struct {
	TotalPages     int    `json:"total_pages"`
	LanguageGuides int    `json:"language_guides"`
	Templates      int    `json:"templates"`
	Version        string `json:"version,omitempty"`
}

// RepoStats describe releases and activity.
type RepoStats struct {
	LatestRelease string `json:"latest_release,omitempty"`
	ReleaseDate   string `json:"release_date,omitempty"`
	TotalReleases int    `json:"total_releases"`
	OpenIssues    int    `json:"open_issues"`
	Commits       int    `json:"commits"`
	Contributors  int    `json:"contributors"`
}

// LintSummary is the outcome of the most recent lint run, when available.
type LintSummary struct {
	Files    int  `json:"files"`
	Errors   int  `json:"errors"`
	Warnings int  `json:"warnings"`
	Failed   bool `json:"failed"`
}

// GuideRow is one line of the guide table.
type GuideRow struct {
	Name      string
	CodeLines int
	TextLines int
	Ratio     float64
	Status    string
	Needed    int
}

// Data is everything the dashboard template renders.
type Data struct {
	Generated  time.Time
	Author     string
	Repository string
	Ratio      *ratio.Report
	Project    ProjectStats
	Repo       RepoStats
	Lint       *LintSummary
}

// Eligible counts non-exempt guides.
func (d *Data) Eligible() int { return d.Ratio.Eligible() }

// Passing counts non-exempt guides meeting the target.
func (d *Data) Passing() int { return d.Ratio.Passing() }

// PassPercentage is the share of eligible guides that pass.
func (d *Data) PassPercentage() float64 {
	if d.Eligible() == 0 {
		return 0
	}
	return float64(d.Passing()) / float64(d.Eligible()) * 100
}

// RatioMet reports whether the overall ratio meets the target.
func (d *Data) RatioMet() bool { return d.Ratio.Overall >= d.Ratio.Target }

// RatioColor picks the shields.io badge colour for the overall ratio.
func (d *Data) RatioColor() string {
	switch r := d.Ratio.Overall; {
	case r >= 3.0:
		return "success"
	case r >= 2.0:
		return "yellow"
	default:
		return "red"
	}
}

// Progress is the overall ratio as a percentage of the target, truncated.
func (d *Data) Progress() int {
	if d.Ratio.Target <= 0 {
		return 0
	}
	return int(d.Ratio.Overall / d.Ratio.Target * 100)
}

// TargetLabel renders the target as "3:1".
func (d *Data) TargetLabel() string {
	return strconv.FormatFloat(d.Ratio.Target, 'f', -1, 64) + ":1"
}

// LintFailed reports a failing lint summary.
func (d *Data) LintFailed() bool { return d.Lint != nil && d.Lint.Failed }

func (d *Data) row(g ratio.GuideStat) GuideRow {
	status := "✅ PASS"
	switch {
	case g.Exempt:
		status = "⬜ EXEMPT"
	case g.Ratio < d.Ratio.Target:
		status = "❌ FAIL"
	}
	return GuideRow{
		Name:      g.Name,
		CodeLines: g.CodeLines,
		TextLines: g.TextLines,
		Ratio:     g.Ratio,
		Status:    status,
		Needed:    g.NeededLines(d.Ratio.Target),
	}
}

// Guides returns every guide ordered by ratio, highest first.
func (d *Data) Guides() []GuideRow {
	rows := make([]GuideRow, 0, len(d.Ratio.Guides))
	for _, g := range d.Ratio.Guides {
		rows = append(rows, d.row(g))
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Ratio > rows[j].Ratio })
	return rows
}

// Failing returns the guides below target in analysis order.
func (d *Data) Failing() []GuideRow {
	var rows []GuideRow
	for _, g := range d.Ratio.Guides {
		if !g.Passes(d.Ratio.Target) {
			rows = append(rows, d.row(g))
		}
	}
	return rows
}

var templateFuncs = template.FuncMap{
	"comma": comma,
	"inc":   func(i int) int { return i + 1 },
	"int":   func(f float64) int { return int(math.Floor(f)) },
}

// comma formats n with thousands separators.
func comma(n int) string {
	s := strconv.Itoa(n)
	neg := n < 0
	if neg {
		s = s[1:]
	}
	var out []byte
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}

// Render executes the dashboard template.
func Render(data *Data) ([]byte, error) {
	tmpl, err := template.New("project_status.md.tmpl").Funcs(templateFuncs).ParseFS(templateFS, "templates/project_status.md.tmpl")
	if err != nil {
		return nil, fmt.Errorf("dashboard: parse template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("dashboard: render: %w", err)
	}
	return buf.Bytes(), nil
}

// ReleaseSource provides GitHub release and repository data.
type ReleaseSource interface {
	HasToken() bool
	ListReleases(ctx context.Context, repo string) ([]releases.Release, error)
	Repository(ctx context.Context, repo string) (*releases.Repository, error)
}

// Options configures a Generator. Paths are relative to the repository
// filesystem.
type Options struct {
	DocsDir      string
	GuidesDir    string
	TemplatesDir string
	PyProject    string
	Repository   string
	Author       string
	Ratio        ratio.Options
}

// Generator gathers metrics and writes the dashboard.
type Generator struct {
	fsys   fs.FS
	opts   Options
	github ReleaseSource
	git    GitRunner
	now    func() time.Time
	logger interfaces.Logger
}

// Option customises a Generator.
type Option func(*Generator)

// WithGitHub enables release statistics.
func WithGitHub(src ReleaseSource) Option {
	return func(g *Generator) { g.github = src }
}

// WithGit overrides the git runner.
func WithGit(runner GitRunner) Option {
	return func(g *Generator) { g.git = runner }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// NewGenerator constructs a Generator over the repository filesystem.
func NewGenerator(fsys fs.FS, opts Options, logger interfaces.Logger, options ...Option) *Generator {
	if opts.DocsDir == "" {
		opts.DocsDir = "docs"
	}
	if opts.GuidesDir == "" {
		opts.GuidesDir = path.Join(opts.DocsDir, "02_language_guides")
	}
	if opts.TemplatesDir == "" {
		opts.TemplatesDir = path.Join(opts.DocsDir, "04_templates")
	}
	if opts.PyProject == "" {
		opts.PyProject = "pyproject.toml"
	}
	if opts.Author == "" {
		opts.Author = "Tyler Dukes"
	}
	g := &Generator{fsys: fsys, opts: opts, now: time.Now, logger: logging.Ensure(logger)}
	for _, o := range options {
		o(g)
	}
	return g
}

// Collect gathers every metric. Missing sources degrade to zero values.
func (g *Generator) Collect(ctx context.Context, lint *LintSummary) (*Data, error) {
	report, err := ratio.NewAnalyzer(g.fsys, g.opts.Ratio, g.logger).Analyze(ctx, g.opts.GuidesDir)
	switch {
	case errors.Is(err, ratio.ErrGuidesDirMissing), errors.Is(err, ratio.ErrNoGuides):
		g.logger.Warn("dashboard.ratio_unavailable", "error", err)
		target := g.opts.Ratio.Target
		if target <= 0 {
			target = ratio.DefaultTarget
		}
		report = &ratio.Report{Target: target}
	case err != nil:
		return nil, err
	}

	project, err := g.projectStats()
	if err != nil {
		return nil, err
	}

	return &Data{
		Generated:  g.now(),
		Author:     g.opts.Author,
		Repository: g.opts.Repository,
		Ratio:      report,
		Project:    project,
		Repo:       g.repoStats(ctx),
		Lint:       lint,
	}, nil
}

// Generate collects metrics and writes the dashboard to output when set.
func (g *Generator) Generate(ctx context.Context, output string, lint *LintSummary) (*Data, []byte, error) {
	data, err := g.Collect(ctx, lint)
	if err != nil {
		return nil, nil, err
	}
	content, err := Render(data)
	if err != nil {
		return nil, nil, err
	}
	if output != "" {
		if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
			return nil, nil, fmt.Errorf("dashboard: create %s: %w", filepath.Dir(output), err)
		}
		if err := renameio.WriteFile(output, content, 0o644); err != nil {
			return nil, nil, fmt.Errorf("dashboard: write %s: %w", output, err)
		}
		g.logger.Info("dashboard.written", "path", output)
	}
	return data, content, nil
}
