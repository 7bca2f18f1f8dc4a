// Package generatecmd exposes the page generators backed by repository
// metadata (changelog, project dashboard) as go-command handlers.
package generatecmd

import (
	"context"
	"fmt"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-styleguide/internal/changelog"
	"github.com/goliatone/go-styleguide/internal/commands"
	"github.com/goliatone/go-styleguide/internal/dashboard"
	"github.com/goliatone/go-styleguide/internal/lint"
	"github.com/goliatone/go-styleguide/pkg/interfaces"
)

const (
	changelogOperation = "generate.changelog"
	dashboardOperation = "generate.dashboard"
)

// ChangelogGenerator renders and writes the changelog.
type ChangelogGenerator interface {
	Generate(ctx context.Context, output string) (*changelog.Result, error)
}

// DashboardGenerator renders and writes the dashboard.
type DashboardGenerator interface {
	Generate(ctx context.Context, output string, lint *dashboard.LintSummary) (*dashboard.Data, []byte, error)
}

// Linter provides the optional lint summary for the dashboard.
type Linter interface {
	Run(ctx context.Context, dir string) (*lint.Report, error)
}

var (
	_ command.Commander[ChangelogCommand] = (*ChangelogHandler)(nil)
	_ command.Commander[DashboardCommand] = (*DashboardHandler)(nil)
)

// ChangelogHandler writes the changelog.
type ChangelogHandler struct {
	inner *commands.Handler[ChangelogCommand]
}

// NewChangelogHandler binds a handler to generator.
func NewChangelogHandler(generator ChangelogGenerator, logger interfaces.Logger, opts ...commands.HandlerOption[ChangelogCommand]) *ChangelogHandler {
	exec := func(ctx context.Context, msg ChangelogCommand) error {
		out := commands.Output(msg.Output)
		fmt.Fprintln(out, "Fetching releases from GitHub...")
		result, err := generator.Generate(ctx, msg.File)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "Found %d releases\n✓ Changelog generated: %s\n", result.Fetched, result.Output)
		return err
	}

	handlerOpts := []commands.HandlerOption[ChangelogCommand]{
		commands.WithLogger[ChangelogCommand](logger),
		commands.WithOperation[ChangelogCommand](changelogOperation),
		commands.WithMessageFields(func(msg ChangelogCommand) map[string]any {
			return map[string]any{"file": msg.File}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ChangelogCommand](logger)),
	}
	return &ChangelogHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

// Execute satisfies command.Commander[ChangelogCommand].
func (h *ChangelogHandler) Execute(ctx context.Context, msg ChangelogCommand) error {
	return h.inner.Execute(ctx, msg)
}

// DashboardHandler writes the dashboard and, optionally, its metrics.
type DashboardHandler struct {
	inner *commands.Handler[DashboardCommand]
}

// NewDashboardHandler binds a handler to generator. linter may be nil, in
// which case IncludeLint is ignored.
func NewDashboardHandler(generator DashboardGenerator, linter Linter, logger interfaces.Logger, opts ...commands.HandlerOption[DashboardCommand]) *DashboardHandler {
	exec := func(ctx context.Context, msg DashboardCommand) error {
		var summary *dashboard.LintSummary
		if msg.IncludeLint && linter != nil {
			report, err := linter.Run(ctx, ".")
			if err != nil {
				return err
			}
			summary = &dashboard.LintSummary{
				Files:    report.Files,
				Errors:   report.Errors,
				Warnings: report.Warnings,
				Failed:   report.Failed(),
			}
		}

		data, _, err := generator.Generate(ctx, msg.File, summary)
		if err != nil {
			return err
		}
		out := commands.Output(msg.Output)
		fmt.Fprintf(out, "✓ Dashboard generated: %s\n", msg.File)
		fmt.Fprintf(out, "  Code-to-text ratio: %.2f:1 (%d/%d guides pass)\n", data.Ratio.Overall, data.Passing(), data.Eligible())

		if msg.MetricsFile != "" {
			if err := dashboard.WriteMetrics(msg.MetricsFile, data); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Metrics written: %s\n", msg.MetricsFile)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[DashboardCommand]{
		commands.WithLogger[DashboardCommand](logger),
		commands.WithOperation[DashboardCommand](dashboardOperation),
		commands.WithMessageFields(func(msg DashboardCommand) map[string]any {
			return map[string]any{"file": msg.File, "metrics": msg.MetricsFile != "", "lint": msg.IncludeLint}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[DashboardCommand](logger)),
	}
	return &DashboardHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

// Execute satisfies command.Commander[DashboardCommand].
func (h *DashboardHandler) Execute(ctx context.Context, msg DashboardCommand) error {
	return h.inner.Execute(ctx, msg)
}
