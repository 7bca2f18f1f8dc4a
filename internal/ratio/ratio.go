// Package ratio measures how much of each language guide is example code
// versus prose.
package ratio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"path"
	"slices"
	"sort"
	"strings"

	"github.com/goliatone/go-styleguide/internal/logging"
	"github.com/goliatone/go-styleguide/pkg/interfaces"
)

// DefaultTarget is the minimum code-to-text ratio a guide must reach.
const DefaultTarget = 3.0

var (
	ErrGuidesDirMissing = errors.New("ratio: guides directory not found")
	ErrNoGuides         = errors.New("ratio: no markdown files found")
)

// Count returns the code and text line counts of a Markdown source.
//
// The first two lines consisting of "---" open and close the front-matter,
// which is skipped. Lines starting with ``` toggle code mode and are not
// counted. Every line inside code counts as code, blank lines included;
// outside code only non-blank lines count as text.
func Count(source []byte) (code, text int) {
	var inCode, inFrontMatter bool
	delimiters := 0

	for _, raw := range strings.Split(string(source), "\n") {
		line := strings.TrimSpace(raw)
		if line == "---" {
			delimiters++
			if delimiters <= 2 {
				inFrontMatter = !inFrontMatter
				continue
			}
		}
		if inFrontMatter {
			continue
		}
		if strings.HasPrefix(line, "```") {
			inCode = !inCode
			continue
		}
		switch {
		case inCode:
			code++
		case line != "":
			text++
		}
	}
	return code, text
}

// Ratio divides code by text, returning 0 when there is no text.
func Ratio(code, text int) float64 {
	if text == 0 {
		return 0
	}
	return float64(code) / float64(text)
}

// GuideStat is the measurement of one guide.
type GuideStat struct {
	Name      string  `json:"name"`
	Path      string  `json:"path"`
	CodeLines int     `json:"code_lines"`
	TextLines int     `json:"text_lines"`
	Ratio     float64 `json:"ratio"`
	Exempt    bool    `json:"exempt"`
}

// Passes reports whether the guide meets target. Exempt guides always pass.
func (g GuideStat) Passes(target float64) bool {
	return g.Exempt || g.Ratio >= target
}

// NeededLines estimates how many code lines a failing guide is missing.
func (g GuideStat) NeededLines(target float64) int {
	return int(math.Ceil(float64(g.TextLines)*target)) - g.CodeLines
}

// Report is the result of analysing a guides directory.
type Report struct {
	Guides    []GuideStat `json:"guides"`
	Target    float64     `json:"target"`
	TotalCode int         `json:"total_code"`
	TotalText int         `json:"total_text"`
	Overall   float64     `json:"overall"`
	Exempt    []string    `json:"exempt"`
}

// BelowTarget returns failing non-exempt guides, lowest ratio first.
func (r *Report) BelowTarget() []GuideStat {
	var below []GuideStat
	for _, g := range r.Guides {
		if !g.Passes(r.Target) {
			below = append(below, g)
		}
	}
	sort.SliceStable(below, func(i, j int) bool { return below[i].Ratio < below[j].Ratio })
	return below
}

// Eligible counts non-exempt guides.
func (r *Report) Eligible() int {
	n := 0
	for _, g := range r.Guides {
		if !g.Exempt {
			n++
		}
	}
	return n
}

// ExemptCount counts exempt guides found in the directory.
func (r *Report) ExemptCount() int {
	return len(r.Guides) - r.Eligible()
}

// Passing counts non-exempt guides that meet the target.
func (r *Report) Passing() int {
	return r.Eligible() - len(r.BelowTarget())
}

// Failed reports whether any non-exempt guide is below target.
func (r *Report) Failed() bool {
	return len(r.BelowTarget()) > 0
}

// Options configures an Analyzer.
type Options struct {
	Target float64
	// Exempt lists guide names (file stems) excluded from totals.
	Exempt []string
}

// Analyzer measures every guide directly inside a directory.
type Analyzer struct {
	fsys   fs.FS
	opts   Options
	logger interfaces.Logger
}

// NewAnalyzer constructs an Analyzer over fsys.
func NewAnalyzer(fsys fs.FS, opts Options, logger interfaces.Logger) *Analyzer {
	if opts.Target <= 0 {
		opts.Target = DefaultTarget
	}
	return &Analyzer{fsys: fsys, opts: opts, logger: logging.Ensure(logger)}
}

// Analyze reads the *.md files in dir (non-recursive) in name order.
func (a *Analyzer) Analyze(ctx context.Context, dir string) (*Report, error) {
	entries, err := fs.ReadDir(a.fsys, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrGuidesDirMissing, dir)
		}
		return nil, fmt.Errorf("ratio: read %s: %w", dir, err)
	}

	report := &Report{Target: a.opts.Target, Exempt: slices.Sorted(slices.Values(a.opts.Exempt))}
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".md" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := path.Join(dir, entry.Name())
		source, err := fs.ReadFile(a.fsys, p)
		if err != nil {
			return nil, fmt.Errorf("ratio: read %s: %w", p, err)
		}

		code, text := Count(source)
		stat := GuideStat{
			Name:      strings.TrimSuffix(entry.Name(), ".md"),
			Path:      p,
			CodeLines: code,
			TextLines: text,
			Ratio:     Ratio(code, text),
		}
		stat.Exempt = slices.Contains(a.opts.Exempt, stat.Name)
		if !stat.Exempt {
			report.TotalCode += code
			report.TotalText += text
		}
		report.Guides = append(report.Guides, stat)
		a.logger.Debug("ratio.guide", "guide", stat.Name, "code", code, "text", text, "ratio", stat.Ratio)
	}
	if len(report.Guides) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoGuides, dir)
	}
	report.Overall = Ratio(report.TotalCode, report.TotalText)
	a.logger.Info("ratio.completed", "guides", len(report.Guides), "overall", report.Overall)
	return report, nil
}

func status(pass bool) string {
	if pass {
		return "✅ PASS"
	}
	return "❌ FAIL"
}

// Write renders the fixed-width analysis table.
func (r *Report) Write(w io.Writer) error {
	var b bytes.Buffer
	rule := strings.Repeat("=", 80)
	thin := strings.Repeat("-", 80)

	b.WriteString("Code-to-Text Ratio Analysis\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "%-30s %12s %12s %10s %10s\n", "Language Guide", "Code Lines", "Text Lines", "Ratio", "Status")
	b.WriteString(thin + "\n")
	for _, g := range r.Guides {
		label := status(g.Ratio >= r.Target)
		if g.Exempt {
			label = "⬜ EXEMPT"
		}
		fmt.Fprintf(&b, "%-30s %12d %12d %10.2f %10s\n", g.Name, g.CodeLines, g.TextLines, g.Ratio, label)
	}
	b.WriteString(thin + "\n")
	fmt.Fprintf(&b, "%-30s %12d %12d %10.2f %10s\n", "OVERALL", r.TotalCode, r.TotalText, r.Overall, status(r.Overall >= r.Target))
	b.WriteString(rule + "\n")

	target := fmt.Sprintf("%g:1", r.Target)
	if below := r.BelowTarget(); len(below) > 0 {
		fmt.Fprintf(&b, "\n%d guides below %s target ratio:\n", len(below), target)
		for _, g := range below {
			fmt.Fprintf(&b, "  - %s: %.2f (needs ~%d more code lines)\n", g.Name, g.Ratio, g.NeededLines(r.Target))
		}
	}

	fmt.Fprintf(&b, "\nTarget: %s code-to-text ratio\n", target)
	if n := r.ExemptCount(); n > 0 {
		fmt.Fprintf(&b, "Exempt:  %d guide(s) — %s\n", n, strings.Join(r.Exempt, ", "))
	}
	fmt.Fprintf(&b, "Achievement: %d/%d guides pass\n", r.Passing(), r.Eligible())

	_, err := w.Write(b.Bytes())
	return err
}
