package glossary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/google/renameio/v2"

	"github.com/goliatone/go-styleguide/internal/logging"
	"github.com/goliatone/go-styleguide/pkg/interfaces"
)

// Mode selects what a glossary run does.
type Mode string

const (
	ModeWrite   Mode = "write"
	ModeDryRun  Mode = "dry-run"
	ModeScanNew Mode = "scan-new"
)

var ErrDocsDirMissing = errors.New("glossary: documentation directory not found")

// Options configures a Service. Paths are relative to the filesystem root.
type Options struct {
	DocsDir        string
	File           string
	MinOccurrences int
	MaxReferences  int
	Repository     string
}

// RunOptions are per-invocation settings.
type RunOptions struct {
	Mode     Mode
	CrossRef bool
	// Output is the on-disk destination for ModeWrite.
	Output string
}

// Result summarises a run.
type Result struct {
	Mode       Mode        `json:"mode"`
	Terms      int         `json:"terms"`
	Referenced int         `json:"referenced"`
	Scanned    bool        `json:"scanned"`
	Candidates []Candidate `json:"candidates,omitempty"`
	Threshold  int         `json:"threshold,omitempty"`
	Content    string      `json:"-"`
	Output     string      `json:"output,omitempty"`
	CrossRef   bool        `json:"cross_ref"`
}

// Service maintains the glossary of a docs tree.
type Service struct {
	fsys   fs.FS
	opts   Options
	logger interfaces.Logger
}

// NewService constructs a glossary Service.
func NewService(fsys fs.FS, opts Options, logger interfaces.Logger) *Service {
	if opts.DocsDir == "" {
		opts.DocsDir = "docs"
	}
	if opts.File == "" {
		opts.File = opts.DocsDir + "/glossary.md"
	}
	return &Service{fsys: fsys, opts: opts, logger: logging.Ensure(logger)}
}

// Load parses the glossary file. A missing file yields an empty glossary.
func (s *Service) Load() (*Glossary, error) {
	data, err := fs.ReadFile(s.fsys, s.opts.File)
	if errors.Is(err, fs.ErrNotExist) {
		return &Glossary{Terms: map[string]Term{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("glossary: read %s: %w", s.opts.File, err)
	}
	return Parse(data), nil
}

// Run parses the glossary and performs the requested mode.
func (s *Service) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	if opts.Mode == "" {
		opts.Mode = ModeWrite
	}
	if _, err := fs.Stat(s.fsys, s.opts.DocsDir); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDocsDirMissing, s.opts.DocsDir)
	}

	g, err := s.Load()
	if err != nil {
		return nil, err
	}
	result := &Result{Mode: opts.Mode, Terms: len(g.Terms), CrossRef: opts.CrossRef}
	s.logger.Info("glossary.parsed", "terms", result.Terms)

	var refs References
	if opts.CrossRef || opts.Mode == ModeScanNew {
		refs, err = CrossReference(ctx, s.fsys, s.opts.DocsDir, g.Terms)
		if err != nil {
			return nil, err
		}
		result.Scanned = true
		result.Referenced = refs.Referenced()
	}

	if opts.Mode == ModeScanNew {
		result.Threshold = s.opts.MinOccurrences
		if result.Threshold <= 0 {
			result.Threshold = DefaultMinOccurrences
		}
		result.Candidates, err = Candidates(ctx, s.fsys, s.opts.DocsDir, g.Known(), result.Threshold)
		if err != nil {
			return nil, err
		}
		s.logger.Info("glossary.candidates", "count", len(result.Candidates))
		return result, nil
	}

	result.Content = Generate(g, GenerateOptions{
		CrossRef:      opts.CrossRef,
		References:    refs,
		MaxReferences: s.opts.MaxReferences,
		Repository:    s.opts.Repository,
	})
	result.Output = opts.Output
	if result.Output == "" {
		result.Output = s.opts.File
	}
	if opts.Mode == ModeDryRun {
		return result, nil
	}

	if err := renameio.WriteFile(result.Output, []byte(result.Content), 0o644); err != nil {
		return nil, fmt.Errorf("glossary: write %s: %w", result.Output, err)
	}
	s.logger.Info("glossary.written", "path", result.Output, "terms", result.Terms)
	return result, nil
}

// Write prints the human-readable summary of a run.
func (r *Result) Write(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Parsing existing glossary...\n  Found %d defined terms\n", r.Terms)
	if r.Scanned {
		fmt.Fprintf(&b, "Scanning documentation for term usage...\n  %d/%d terms referenced in docs\n", r.Referenced, r.Terms)
	}

	switch r.Mode {
	case ModeScanNew:
		b.WriteString("\nScanning for candidate terms not in glossary...\n")
		if len(r.Candidates) == 0 {
			b.WriteString("  No new candidate terms found.\n")
			break
		}
		rule := "  " + strings.Repeat("-", 60) + "\n"
		fmt.Fprintf(&b, "\n  Found %d candidate terms (%d+ occurrences):\n", len(r.Candidates), r.Threshold)
		b.WriteString(rule)
		for _, c := range r.Candidates {
			fmt.Fprintf(&b, "    %-40s (%d occurrences)\n", c.Term, c.Occurrences)
		}
		b.WriteString(rule)
		b.WriteString("  Add these terms to docs/glossary.md manually, then re-run to include them.\n")
	case ModeDryRun:
		b.WriteString("Generating glossary...\n")
		b.WriteString(Preview(r.Content, r.Output, r.Terms))
	default:
		b.WriteString("Generating glossary...\n")
		fmt.Fprintf(&b, "\n  Wrote %d terms to %s\n", r.Terms, r.Output)
		if r.CrossRef && r.Referenced > 0 {
			fmt.Fprintf(&b, "  Cross-referenced %d terms across documentation\n", r.Referenced)
		}
		b.WriteString("\nDone!\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}
