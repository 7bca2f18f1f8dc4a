// Package changelog renders docs/changelog.md from the project's GitHub
// releases in Keep a Changelog format.
package changelog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/renameio/v2"

	"github.com/goliatone/go-styleguide/internal/logging"
	"github.com/goliatone/go-styleguide/internal/releases"
	"github.com/goliatone/go-styleguide/pkg/interfaces"
)

const header = `# Changelog

All notable changes to this project will be documented in this file.

The format is based on [Keep a Changelog](https://keepachangelog.com/en/1.0.0/),
and this project adheres to [Semantic Versioning](https://semver.org/spec/v2.0.0.html).

## About This Changelog

This changelog is automatically generated from GitHub releases. Each release includes auto-generated release notes based on pull requests and commits.

`

// ReleaseLister lists the releases of a repository, newest first.
type ReleaseLister interface {
	ListReleases(ctx context.Context, repo string) ([]releases.Release, error)
}

// ReleaseDate formats a release timestamp as YYYY-MM-DD, falling back to
// its first ten characters when it does not parse.
func ReleaseDate(publishedAt string) string {
	if t, err := time.Parse(time.RFC3339, publishedAt); err == nil {
		return t.UTC().Format(time.DateOnly)
	}
	if len(publishedAt) > 10 {
		return publishedAt[:10]
	}
	return publishedAt
}

// Render builds the changelog. Draft releases are skipped.
func Render(list []releases.Release, now time.Time) string {
	var b strings.Builder
	b.WriteString(header)

	if len(list) == 0 {
		b.WriteString("## [Unreleased]\n\nNo releases yet.\n")
		return b.String()
	}

	b.WriteString("## [Unreleased]\n\nChanges that are in the main branch but not yet released.\n\n")
	for _, rel := range list {
		if rel.Draft {
			continue
		}
		tag := rel.TagName
		if tag == "" {
			tag = "Unknown"
		}
		pre := ""
		if rel.Prerelease {
			pre = " (Pre-release)"
		}
		fmt.Fprintf(&b, "## [%s]%s - %s\n\n", tag, pre, ReleaseDate(rel.PublishedAt))
		if body := strings.TrimSpace(rel.Body); body != "" {
			b.WriteString(body + "\n\n")
		}
		if rel.HTMLURL != "" {
			fmt.Fprintf(&b, "[View Release](%s)\n\n", rel.HTMLURL)
		}
	}

	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "*This changelog was automatically generated on %s*\n", now.UTC().Format("2006-01-02 15:04:05 UTC"))
	return b.String()
}

// Result summarises a generation run.
type Result struct {
	Fetched   int    `json:"fetched"`
	Published int    `json:"published"`
	Output    string `json:"output"`
	Content   string `json:"-"`
}

// Generator fetches releases and writes the changelog.
type Generator struct {
	lister ReleaseLister
	repo   string
	now    func() time.Time
	logger interfaces.Logger
}

// Option customises a Generator.
type Option func(*Generator)

// WithClock overrides the footer timestamp source.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// NewGenerator constructs a Generator for repo (owner/name).
func NewGenerator(lister ReleaseLister, repo string, logger interfaces.Logger, opts ...Option) *Generator {
	g := &Generator{lister: lister, repo: repo, now: time.Now, logger: logging.Ensure(logger)}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate fetches releases and writes the changelog to output. An empty
// output only renders.
func (g *Generator) Generate(ctx context.Context, output string) (*Result, error) {
	list, err := g.lister.ListReleases(ctx, g.repo)
	if err != nil {
		return nil, fmt.Errorf("changelog: fetch releases: %w", err)
	}
	g.logger.Info("changelog.fetched", "repo", g.repo, "releases", len(list))

	res := &Result{Fetched: len(list), Output: output, Content: Render(list, g.now())}
	for _, rel := range list {
		if !rel.Draft {
			res.Published++
		}
	}
	if output == "" {
		return res, nil
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return nil, fmt.Errorf("changelog: create %s: %w", filepath.Dir(output), err)
	}
	if err := renameio.WriteFile(output, []byte(res.Content), 0o644); err != nil {
		return nil, fmt.Errorf("changelog: write %s: %w", output, err)
	}
	g.logger.Info("changelog.written", "path", output, "releases", res.Published)
	return res, nil
}
