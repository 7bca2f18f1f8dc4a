// Package cleanup removes static metadata that goes stale in hand-edited
// documents: date-like front-matter keys and hard-coded version footers.
package cleanup

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/google/renameio/v2"

	"github.com/goliatone/go-styleguide/internal/logging"
	"github.com/goliatone/go-styleguide/pkg/interfaces"
)

var footerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^\*Template Version:.*?\*\s*$`),
	regexp.MustCompile(`(?m)^\*Last Updated:.*?\*\s*$`),
	regexp.MustCompile(`(?m)^\*\*Version\*\*:.*?$`),
	regexp.MustCompile(`(?m)^\*\*Template Version\*\*:.*?$`),
	regexp.MustCompile(`(?mi)\n\*\*Last Updated\*\*:.*?$`),
	regexp.MustCompile(`(?mi)\n__Last Updated__:.*?$`),
	regexp.MustCompile(`(?mi)\nlast updated:.*?$`),
}

var footerLine = regexp.MustCompile(`^(\*Template Version:.*\*|\*Last Updated:.*\*|\*\*Version\*\*:.*|\*\*Template Version\*\*:.*|(?i:\*\*Last Updated\*\*:.*|__Last Updated__:.*))\s*$`)

var blankRuns = regexp.MustCompile(`\n{4,}`)

var frontMatterBlock = regexp.MustCompile(`(?s)^---\n(.*?)\n---\n`)

// IsStaticFooter reports whether a single line is a hard-coded version or
// last-updated footer.
func IsStaticFooter(line string) bool {
	return footerLine.MatchString(strings.TrimRight(line, "\r"))
}

// Options configures Clean and Run.
type Options struct {
	// StripKeys lists front-matter keys to remove.
	StripKeys []string
	// KeepFooters disables footer removal.
	KeepFooters bool
	DryRun      bool
}

// Change describes the edits applied to one file.
type Change struct {
	Path        string
	RemovedKeys []string
	Footers     int
}

// Result summarises a cleanup run.
type Result struct {
	Scanned  int
	Modified []Change
	DryRun   bool
}

// Clean returns source with static metadata removed. changed is false when
// the output equals the input.
func Clean(source []byte, opts Options) (out []byte, change Change, changed bool) {
	content := string(source)

	content, change.RemovedKeys = stripKeys(content, opts.StripKeys)

	if !opts.KeepFooters {
		content, change.Footers = removeFooters(content)
	}

	content = blankRuns.ReplaceAllString(content, "\n\n\n")
	content = strings.TrimRightFunc(content, isSpace) + "\n"

	return []byte(content), change, content != string(source)
}

// removeFooters drops footer lines outside fenced code blocks. Fenced
// content, including an unterminated trailing fence, is copied verbatim.
func removeFooters(content string) (string, int) {
	var out, segment strings.Builder
	removed := 0
	inFence := false

	flush := func() {
		text := segment.String()
		segment.Reset()
		if inFence {
			out.WriteString(text)
			return
		}
		// A segment that follows a fence starts at a line boundary; the
		// leading newline lets the newline-anchored patterns match there.
		afterFence := out.Len() > 0
		if afterFence {
			text = "\n" + text
		}
		for _, pattern := range footerPatterns {
			if n := len(pattern.FindAllStringIndex(text, -1)); n > 0 {
				removed += n
				text = pattern.ReplaceAllString(text, "")
			}
		}
		if afterFence {
			text = strings.TrimPrefix(text, "\n")
		}
		out.WriteString(text)
	}

	for _, line := range strings.SplitAfter(content, "\n") {
		if !strings.HasPrefix(strings.TrimSpace(line), "```") {
			segment.WriteString(line)
			continue
		}
		if !inFence {
			flush()
			inFence = true
			segment.WriteString(line)
			continue
		}
		segment.WriteString(line)
		flush()
		inFence = false
	}
	flush()
	return out.String(), removed
}

func stripKeys(content string, keys []string) (string, []string) {
	if len(keys) == 0 {
		return content, nil
	}
	loc := frontMatterBlock.FindStringSubmatchIndex(content)
	if loc == nil {
		return content, nil
	}
	block := content[loc[2]:loc[3]]
	rest := content[loc[1]:]

	var removed []string
	for _, key := range keys {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		pattern := regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(key) + `:.*$\n?`)
		if pattern.MatchString(block) {
			removed = append(removed, key)
			block = pattern.ReplaceAllString(block, "")
		}
	}
	if len(removed) == 0 {
		return content, nil
	}
	if block != "" && !strings.HasSuffix(block, "\n") {
		block += "\n"
	}
	return "---\n" + block + "---\n" + rest, removed
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f'
}

// Runner applies Clean to every Markdown file under a docs directory.
type Runner struct {
	logger interfaces.Logger
}

// NewRunner constructs a Runner.
func NewRunner(logger interfaces.Logger) *Runner {
	return &Runner{logger: logging.Ensure(logger)}
}

// Run walks dir and rewrites modified files atomically unless opts.DryRun.
func (r *Runner) Run(ctx context.Context, dir string, opts Options) (*Result, error) {
	result := &Result{DryRun: opts.DryRun}

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".md") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cleanup: walk %s: %w", dir, err)
	}
	slices.Sort(paths)

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result.Scanned++

		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("cleanup: stat %s: %w", path, err)
		}
		source, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("cleanup: read %s: %w", path, err)
		}

		out, change, changed := Clean(source, opts)
		if !changed {
			continue
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			rel = path
		}
		change.Path = filepath.ToSlash(rel)
		result.Modified = append(result.Modified, change)

		if opts.DryRun {
			r.logger.Info("cleanup.would_update", "path", change.Path, "keys", change.RemovedKeys, "footers", change.Footers)
			continue
		}
		if err := renameio.WriteFile(path, out, info.Mode().Perm()); err != nil {
			return nil, fmt.Errorf("cleanup: write %s: %w", path, err)
		}
		r.logger.Info("cleanup.updated", "path", change.Path, "keys", change.RemovedKeys, "footers", change.Footers)
	}
	return result, nil
}

// Summary renders the human readable report printed by the CLI.
func (r *Result) Summary() string {
	var b bytes.Buffer
	verb := "Updated"
	if r.DryRun {
		verb = "Would update"
	}
	for _, change := range r.Modified {
		fmt.Fprintf(&b, "✓ %s: %s\n", verb, change.Path)
	}
	b.WriteString("\n" + strings.Repeat("=", 60) + "\n")
	fmt.Fprintf(&b, "Modified %d file(s)\n", len(r.Modified))
	fmt.Fprintf(&b, "Skipped %d file(s) (no changes needed)\n", r.Scanned-len(r.Modified))
	return b.String()
}
