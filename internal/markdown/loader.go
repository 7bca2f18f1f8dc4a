package markdown

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goliatone/go-styleguide/pkg/interfaces"
)

// LoaderConfig configures how Markdown files are discovered below the docs root.
type LoaderConfig struct {
	// BasePath is the docs root on disk. It is only used to relativise
	// absolute paths handed to the loader.
	BasePath string
	// Pattern limits discovered files to those matching the glob (defaults to "*.md").
	Pattern string
	// Recursive controls whether sub-directories are traversed.
	Recursive bool
	// Exclude lists glob patterns (matched against the relative path and the
	// base name) that are never loaded.
	Exclude []string
}

// Loader turns docs-tree paths into parsed documents.
type Loader struct {
	fs        fs.FS
	basePath  string
	pattern   string
	recursive bool
	exclude   []string
}

// NewLoader constructs a Loader over filesystem. The filesystem root is the
// docs root.
func NewLoader(filesystem fs.FS, cfg LoaderConfig) *Loader {
	pattern := cfg.Pattern
	if strings.TrimSpace(pattern) == "" {
		pattern = "*.md"
	}
	basePath := ""
	if strings.TrimSpace(cfg.BasePath) != "" {
		basePath = filepath.Clean(cfg.BasePath)
	}
	return &Loader{
		fs:        filesystem,
		basePath:  basePath,
		pattern:   pattern,
		recursive: cfg.Recursive,
		exclude:   append([]string(nil), cfg.Exclude...),
	}
}

// FS exposes the underlying filesystem.
func (l *Loader) FS() fs.FS {
	return l.fs
}

// LoadFile reads, parses and inspects a single Markdown document.
func (l *Loader) LoadFile(ctx context.Context, name string, _ LoadParams) (*DocumentResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rel, err := l.makeRelative(name)
	if err != nil {
		return nil, err
	}

	data, err := fs.ReadFile(l.fs, rel)
	if err != nil {
		return nil, fmt.Errorf("markdown loader read %s: %w", rel, err)
	}
	info, err := fs.Stat(l.fs, rel)
	if err != nil {
		return nil, fmt.Errorf("markdown loader stat %s: %w", rel, err)
	}

	doc, err := BuildDocument(rel, SectionOf(rel), data, info.ModTime())
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(data)
	doc.Checksum = sum[:]
	doc.Outline = Inspect(doc.Body)

	return &DocumentResult{Document: doc, Source: data}, nil
}

// LoadDirectory discovers Markdown files under dir and returns parsed
// documents sorted by path.
func (l *Loader) LoadDirectory(ctx context.Context, dir string, opts LoadParams) ([]*DocumentResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root, err := l.makeRelative(dir)
	if err != nil {
		return nil, err
	}

	var results []*DocumentResult
	walkErr := fs.WalkDir(l.fs, root, func(current string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if current != root && (!l.shouldRecurse(opts.Recursive) || strings.HasPrefix(d.Name(), ".")) {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !MatchPattern(current, firstNonEmpty(opts.Pattern, l.pattern)) || l.excluded(current, opts.Exclude) {
			return nil
		}

		result, err := l.LoadFile(ctx, current, opts)
		if err != nil {
			return err
		}
		results = append(results, result)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Document.FilePath < results[j].Document.FilePath
	})
	return results, nil
}

func (l *Loader) shouldRecurse(override *bool) bool {
	if override != nil {
		return *override
	}
	return l.recursive
}

func (l *Loader) excluded(rel string, extra []string) bool {
	for _, pattern := range append(append([]string(nil), l.exclude...), extra...) {
		if strings.TrimSpace(pattern) != "" && MatchPattern(rel, pattern) {
			return true
		}
	}
	return false
}

// MatchPattern matches a slash-separated path against a glob. Patterns
// without a slash match the base name; a leading "**/" matches any depth.
func MatchPattern(rel, pattern string) bool {
	pattern = filepath.ToSlash(pattern)
	pattern = strings.ReplaceAll(pattern, "**/", "")
	target := rel
	if !strings.Contains(pattern, "/") {
		target = path.Base(rel)
	}
	match, err := path.Match(pattern, target)
	return err == nil && match
}

// SectionOf returns the first directory segment of a docs-relative path, or
// "" for files in the docs root.
func SectionOf(rel string) string {
	rel = strings.TrimPrefix(filepath.ToSlash(rel), "./")
	if idx := strings.Index(rel, "/"); idx > 0 {
		return rel[:idx]
	}
	return ""
}

func (l *Loader) makeRelative(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return ".", nil
	}
	clean := filepath.Clean(name)
	if filepath.IsAbs(clean) {
		if l.basePath == "" {
			return "", fmt.Errorf("markdown loader: absolute path %s provided without base path", name)
		}
		rel, err := filepath.Rel(l.basePath, clean)
		if err != nil {
			return "", fmt.Errorf("markdown loader: make relative %s: %w", name, err)
		}
		clean = rel
	}
	clean = filepath.ToSlash(clean)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("markdown loader: %s is outside the docs root", name)
	}
	return clean, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// DocumentResult carries the parsed document along with the raw source.
type DocumentResult struct {
	Document *interfaces.Document
	Source   []byte
}

// LoadParams provide call-specific overrides for discovery.
type LoadParams struct {
	Pattern   string
	Recursive *bool
	Exclude   []string
}
