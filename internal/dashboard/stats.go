package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"path"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/goliatone/go-styleguide/internal/changelog"
)

// GitRunner runs git with args in the repository and returns trimmed stdout.
type GitRunner interface {
	Git(ctx context.Context, args ...string) (string, error)
}

// ExecGit runs the git binary in Dir.
type ExecGit struct {
	Dir string
}

func (e ExecGit) Git(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = e.Dir
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}

func countMarkdown(fsys fs.FS, dir string, recursive bool) (int, error) {
	n := 0
	err := fs.WalkDir(fsys, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != dir && !recursive {
				return fs.SkipDir
			}
			return nil
		}
		if path.Ext(p) == ".md" {
			n++
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	return n, err
}

type pyproject struct {
	Project struct {
		Version string `toml:"version"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Version string `toml:"version"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

// ProjectVersion reads the version from a pyproject.toml document, checking
// [project] before [tool.poetry].
func ProjectVersion(data []byte) (string, error) {
	var doc pyproject
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return "", fmt.Errorf("dashboard: parse pyproject: %w", err)
	}
	if doc.Project.Version != "" {
		return doc.Project.Version, nil
	}
	return doc.Tool.Poetry.Version, nil
}

func (g *Generator) projectStats() (ProjectStats, error) {
	var stats ProjectStats
	var err error
	if stats.TotalPages, err = countMarkdown(g.fsys, g.opts.DocsDir, true); err != nil {
		return stats, fmt.Errorf("dashboard: count pages: %w", err)
	}
	if stats.LanguageGuides, err = countMarkdown(g.fsys, g.opts.GuidesDir, false); err != nil {
		return stats, fmt.Errorf("dashboard: count guides: %w", err)
	}
	if stats.Templates, err = countMarkdown(g.fsys, g.opts.TemplatesDir, false); err != nil {
		return stats, fmt.Errorf("dashboard: count templates: %w", err)
	}

	data, err := fs.ReadFile(g.fsys, g.opts.PyProject)
	switch {
	case err == nil:
		if stats.Version, err = ProjectVersion(data); err != nil {
			g.logger.Warn("dashboard.pyproject_invalid", "error", err)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return stats, fmt.Errorf("dashboard: read %s: %w", g.opts.PyProject, err)
	}
	return stats, nil
}

func (g *Generator) repoStats(ctx context.Context) RepoStats {
	var stats RepoStats

	if g.github != nil && g.github.HasToken() && g.opts.Repository != "" {
		list, err := g.github.ListReleases(ctx, g.opts.Repository)
		if err != nil {
			g.logger.Warn("dashboard.releases_unavailable", "error", err)
		}
		for _, rel := range list {
			if rel.Draft {
				continue
			}
			if stats.LatestRelease == "" {
				stats.LatestRelease = rel.TagName
				stats.ReleaseDate = changelog.ReleaseDate(rel.PublishedAt)
			}
			stats.TotalReleases++
		}
		if info, err := g.github.Repository(ctx, g.opts.Repository); err == nil {
			stats.OpenIssues = info.OpenIssues
		} else {
			g.logger.Warn("dashboard.repository_unavailable", "error", err)
		}
	}

	if g.git == nil {
		return stats
	}
	if out, err := g.git.Git(ctx, "rev-list", "--all", "--count"); err == nil {
		stats.Commits, _ = strconv.Atoi(out)
	} else {
		g.logger.Warn("dashboard.git_failed", "error", err)
	}
	if out, err := g.git.Git(ctx, "log", "--all", "--format=%aN"); err == nil && out != "" {
		authors := make(map[string]struct{})
		for _, name := range strings.Split(out, "\n") {
			authors[name] = struct{}{}
		}
		stats.Contributors = len(authors)
	}
	return stats
}
