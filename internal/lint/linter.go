package lint

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-styleguide/internal/logging"
	"github.com/goliatone/go-styleguide/internal/markdown"
	"github.com/goliatone/go-styleguide/internal/validation"
	"github.com/goliatone/go-styleguide/pkg/interfaces"
)

// Options configures a Linter.
type Options struct {
	RequiredKeys        []string
	AllowedStatuses     []string
	Disabled            []string
	Strict              bool
	ModuleTagExtensions []string
	// Workers bounds concurrent file checks; 0 uses GOMAXPROCS.
	Workers int
	Pattern string
	Exclude []string
	// Schema, when set, enables the frontmatter-schema rule.
	Schema *validation.Schema
}

// Env is the shared, read-only state handed to rules. The link target
// cache is safe for concurrent use.
type Env struct {
	fsys    fs.FS
	opts    Options
	schema  *validation.Schema
	targets sync.Map
}

// Linter runs the enabled rules over a docs tree.
type Linter struct {
	fsys   fs.FS
	opts   Options
	rules  []Rule
	logger interfaces.Logger
}

// New constructs a Linter over fsys, whose root is the docs root.
func New(fsys fs.FS, opts Options, logger interfaces.Logger) *Linter {
	if strings.TrimSpace(opts.Pattern) == "" {
		opts.Pattern = "*.md"
	}
	var rules []Rule
	for _, rule := range DefaultRules() {
		if slices.Contains(opts.Disabled, rule.Name()) {
			continue
		}
		if rule.Name() == "frontmatter-schema" && opts.Schema == nil {
			continue
		}
		rules = append(rules, rule)
	}
	return &Linter{fsys: fsys, opts: opts, rules: rules, logger: logging.Ensure(logger)}
}

// Rules returns the names of the enabled rules.
func (l *Linter) Rules() []string {
	names := make([]string, len(l.rules))
	for i, rule := range l.rules {
		names[i] = rule.Name()
	}
	return names
}

// Run lints every Markdown document and module-tagged file under dir.
func (l *Linter) Run(ctx context.Context, dir string) (*Report, error) {
	if dir == "" {
		dir = "."
	}
	paths, err := l.discover(ctx, dir)
	if err != nil {
		return nil, err
	}

	env := &Env{fsys: l.fsys, opts: l.opts, schema: l.opts.Schema}
	results := make([][]Issue, len(paths))

	workers := l.opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for i, p := range paths {
		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			issues, err := l.checkFile(env, p)
			if err != nil {
				return err
			}
			results[i] = issues
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	var issues []Issue
	for _, batch := range results {
		issues = append(issues, batch...)
	}
	report := newReport(len(paths), l.opts.Strict, issues)
	l.logger.Info("lint.completed", "files", report.Files, "errors", report.Errors, "warnings", report.Warnings)
	return report, nil
}

// LintSource checks a single in-memory file, resolving links against the
// linter filesystem.
func (l *Linter) LintSource(name string, source []byte) ([]Issue, error) {
	env := &Env{fsys: l.fsys, opts: l.opts, schema: l.opts.Schema}
	file, err := l.buildFile(name, source)
	if err != nil {
		return nil, err
	}
	return l.apply(env, file), nil
}

func (l *Linter) discover(ctx context.Context, dir string) ([]string, error) {
	var paths []string
	err := fs.WalkDir(l.fsys, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != dir && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if l.excluded(p) {
			return nil
		}
		if markdown.MatchPattern(p, l.opts.Pattern) || l.moduleTagged(p) {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("lint: walk %s: %w", dir, err)
	}
	slices.Sort(paths)
	return paths, nil
}

func (l *Linter) excluded(p string) bool {
	for _, pattern := range l.opts.Exclude {
		if strings.TrimSpace(pattern) != "" && markdown.MatchPattern(p, pattern) {
			return true
		}
	}
	return false
}

func (l *Linter) moduleTagged(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	if ext == "" || ext == ".md" {
		return false
	}
	return slices.Contains(l.opts.ModuleTagExtensions, ext)
}

func (l *Linter) checkFile(env *Env, p string) ([]Issue, error) {
	source, err := fs.ReadFile(l.fsys, p)
	if err != nil {
		return nil, fmt.Errorf("lint: read %s: %w", p, err)
	}
	file, err := l.buildFile(p, source)
	if err != nil {
		return nil, err
	}
	return l.apply(env, file), nil
}

// errMalformedFrontMatter marks documents whose front-matter YAML fails to
// parse. They are reported as issues instead of aborting the run.
var errMalformedFrontMatter = errors.New("malformed front-matter")

func (l *Linter) buildFile(p string, source []byte) (*File, error) {
	file := &File{Path: p, Source: source}
	if !markdown.MatchPattern(p, l.opts.Pattern) {
		return file, nil
	}
	doc, err := markdown.BuildDocument(p, markdown.SectionOf(p), source, time.Time{})
	if err != nil {
		file.Doc = nil
		file.parseErr = fmt.Errorf("%w: %v", errMalformedFrontMatter, err)
		return file, nil
	}
	doc.Outline = markdown.Inspect(doc.Body)
	file.Doc = doc
	return file, nil
}

func (l *Linter) apply(env *Env, file *File) []Issue {
	if file.parseErr != nil {
		return []Issue{issue(file, 1, "frontmatter-present", SeverityError, "%v", file.parseErr)}
	}
	var issues []Issue
	for _, rule := range l.rules {
		found := rule.Check(env, file)
		for _, is := range found {
			logging.WithDocumentContext(l.logger, is.Path, markdown.SectionOf(is.Path), is.Rule).
				Debug("lint.issue", "line", is.Line, "severity", string(is.Severity), "message", is.Message)
		}
		issues = append(issues, found...)
	}
	return issues
}
