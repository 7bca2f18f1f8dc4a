// Package docscmd exposes the documentation checks and generators (lint,
// ratio, glossary, page index, cleanup) as go-command handlers.
package docscmd

import (
	"context"
	"fmt"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-styleguide/internal/cleanup"
	"github.com/goliatone/go-styleguide/internal/commands"
	"github.com/goliatone/go-styleguide/internal/glossary"
	"github.com/goliatone/go-styleguide/internal/lint"
	"github.com/goliatone/go-styleguide/internal/pageindex"
	"github.com/goliatone/go-styleguide/internal/ratio"
	"github.com/goliatone/go-styleguide/pkg/interfaces"
)

const (
	lintOperation      = "docs.lint"
	ratioOperation     = "docs.ratio"
	glossaryOperation  = "docs.glossary"
	pageIndexOperation = "docs.page_index"
	cleanupOperation   = "docs.cleanup"
)

// Linter runs the lint rules over a directory.
type Linter interface {
	Run(ctx context.Context, dir string) (*lint.Report, error)
}

// RatioAnalyzer measures guide code-to-text ratios.
type RatioAnalyzer interface {
	Analyze(ctx context.Context, dir string) (*ratio.Report, error)
}

// GlossaryRunner maintains the glossary.
type GlossaryRunner interface {
	Run(ctx context.Context, opts glossary.RunOptions) (*glossary.Result, error)
}

// PageIndexer writes the related-pages index.
type PageIndexer interface {
	Generate(ctx context.Context, output string) (*pageindex.Index, error)
}

// Cleaner strips static metadata.
type Cleaner interface {
	Run(ctx context.Context, dir string, opts cleanup.Options) (*cleanup.Result, error)
}

var (
	_ command.Commander[LintCommand]      = (*LintHandler)(nil)
	_ command.Commander[RatioCommand]     = (*RatioHandler)(nil)
	_ command.Commander[GlossaryCommand]  = (*GlossaryHandler)(nil)
	_ command.Commander[PageIndexCommand] = (*PageIndexHandler)(nil)
	_ command.Commander[CleanupCommand]   = (*CleanupHandler)(nil)
)

// LintHandler prints the lint report and fails on errors, or on warnings
// in strict mode.
type LintHandler struct {
	inner *commands.Handler[LintCommand]
	last  *lint.Report
}

// NewLintHandler binds a handler to linter.
func NewLintHandler(linter Linter, logger interfaces.Logger, opts ...commands.HandlerOption[LintCommand]) *LintHandler {
	h := &LintHandler{}
	exec := func(ctx context.Context, msg LintCommand) error {
		report, err := linter.Run(ctx, msg.Dir)
		if err != nil {
			return err
		}
		if msg.Strict {
			report.Strict = true
		}
		h.last = report
		if err := report.Write(commands.Output(msg.Output)); err != nil {
			return err
		}
		if report.Failed() {
			return commands.CheckFailed("%d error(s), %d warning(s)", report.Errors, report.Warnings)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[LintCommand]{
		commands.WithLogger[LintCommand](logger),
		commands.WithOperation[LintCommand](lintOperation),
		commands.WithMessageFields(func(msg LintCommand) map[string]any {
			return map[string]any{"dir": msg.Dir, "strict": msg.Strict}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[LintCommand](logger)),
	}
	h.inner = commands.NewHandler(exec, append(handlerOpts, opts...)...)
	return h
}

// Execute satisfies command.Commander[LintCommand].
func (h *LintHandler) Execute(ctx context.Context, msg LintCommand) error {
	return h.inner.Execute(ctx, msg)
}

// LastReport returns the report of the most recent completed run.
func (h *LintHandler) LastReport() *lint.Report {
	return h.last
}

// RatioHandler prints the ratio table and fails when a guide is below target.
type RatioHandler struct {
	inner *commands.Handler[RatioCommand]
}

// NewRatioHandler binds a handler to analyzer.
func NewRatioHandler(analyzer RatioAnalyzer, logger interfaces.Logger, opts ...commands.HandlerOption[RatioCommand]) *RatioHandler {
	exec := func(ctx context.Context, msg RatioCommand) error {
		report, err := analyzer.Analyze(ctx, msg.GuidesDir)
		if err != nil {
			return err
		}
		if err := report.Write(commands.Output(msg.Output)); err != nil {
			return err
		}
		if report.Failed() {
			return commands.CheckFailed("%d guide(s) below %g:1 target", len(report.BelowTarget()), report.Target)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[RatioCommand]{
		commands.WithLogger[RatioCommand](logger),
		commands.WithOperation[RatioCommand](ratioOperation),
		commands.WithMessageFields(func(msg RatioCommand) map[string]any {
			return map[string]any{"guides_dir": msg.GuidesDir}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[RatioCommand](logger)),
	}
	return &RatioHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

// Execute satisfies command.Commander[RatioCommand].
func (h *RatioHandler) Execute(ctx context.Context, msg RatioCommand) error {
	return h.inner.Execute(ctx, msg)
}

// GlossaryHandler runs the glossary service in the requested mode.
type GlossaryHandler struct {
	inner *commands.Handler[GlossaryCommand]
}

// NewGlossaryHandler binds a handler to runner.
func NewGlossaryHandler(runner GlossaryRunner, logger interfaces.Logger, opts ...commands.HandlerOption[GlossaryCommand]) *GlossaryHandler {
	exec := func(ctx context.Context, msg GlossaryCommand) error {
		result, err := runner.Run(ctx, glossary.RunOptions{
			Mode:     msg.Mode,
			CrossRef: msg.CrossRef,
			Output:   msg.File,
		})
		if err != nil {
			return err
		}
		return result.Write(commands.Output(msg.Output))
	}

	handlerOpts := []commands.HandlerOption[GlossaryCommand]{
		commands.WithLogger[GlossaryCommand](logger),
		commands.WithOperation[GlossaryCommand](glossaryOperation),
		commands.WithMessageFields(func(msg GlossaryCommand) map[string]any {
			return map[string]any{"mode": string(msg.Mode), "cross_ref": msg.CrossRef}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[GlossaryCommand](logger)),
	}
	return &GlossaryHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

// Execute satisfies command.Commander[GlossaryCommand].
func (h *GlossaryHandler) Execute(ctx context.Context, msg GlossaryCommand) error {
	return h.inner.Execute(ctx, msg)
}

// PageIndexHandler writes the page index.
type PageIndexHandler struct {
	inner *commands.Handler[PageIndexCommand]
}

// NewPageIndexHandler binds a handler to indexer.
func NewPageIndexHandler(indexer PageIndexer, logger interfaces.Logger, opts ...commands.HandlerOption[PageIndexCommand]) *PageIndexHandler {
	exec := func(ctx context.Context, msg PageIndexCommand) error {
		ix, err := indexer.Generate(ctx, msg.File)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(commands.Output(msg.Output), "Page index: %d page(s) written to %s\n", len(ix.Pages), msg.File)
		return err
	}

	handlerOpts := []commands.HandlerOption[PageIndexCommand]{
		commands.WithLogger[PageIndexCommand](logger),
		commands.WithOperation[PageIndexCommand](pageIndexOperation),
		commands.WithMessageFields(func(msg PageIndexCommand) map[string]any {
			return map[string]any{"file": msg.File}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[PageIndexCommand](logger)),
	}
	return &PageIndexHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

// Execute satisfies command.Commander[PageIndexCommand].
func (h *PageIndexHandler) Execute(ctx context.Context, msg PageIndexCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CleanupHandler removes static metadata and prints the summary.
type CleanupHandler struct {
	inner *commands.Handler[CleanupCommand]
}

// NewCleanupHandler binds a handler to cleaner.
func NewCleanupHandler(cleaner Cleaner, logger interfaces.Logger, opts ...commands.HandlerOption[CleanupCommand]) *CleanupHandler {
	exec := func(ctx context.Context, msg CleanupCommand) error {
		result, err := cleaner.Run(ctx, msg.Dir, cleanup.Options{
			StripKeys:   msg.StripKeys,
			KeepFooters: msg.KeepFooters,
			DryRun:      msg.DryRun,
		})
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(commands.Output(msg.Output), result.Summary())
		return err
	}

	handlerOpts := []commands.HandlerOption[CleanupCommand]{
		commands.WithLogger[CleanupCommand](logger),
		commands.WithOperation[CleanupCommand](cleanupOperation),
		commands.WithMessageFields(func(msg CleanupCommand) map[string]any {
			return map[string]any{"dir": msg.Dir, "dry_run": msg.DryRun}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[CleanupCommand](logger)),
	}
	return &CleanupHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

// Execute satisfies command.Commander[CleanupCommand].
func (h *CleanupHandler) Execute(ctx context.Context, msg CleanupCommand) error {
	return h.inner.Execute(ctx, msg)
}
