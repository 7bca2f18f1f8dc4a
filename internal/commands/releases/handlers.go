// Package releasescmd exposes the action, versions catalogue and language
// release checks as go-command handlers.
package releasescmd

import (
	"context"
	"fmt"
	"io/fs"
	"slices"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-styleguide/internal/commands"
	"github.com/goliatone/go-styleguide/internal/releases"
	"github.com/goliatone/go-styleguide/pkg/interfaces"
)

const (
	checkActionsOperation     = "releases.check_actions"
	validateVersionsOperation = "releases.validate_versions"
	checkLanguagesOperation   = "releases.check_languages"
)

// Checker is the subset of releases.Checker the handlers use.
type Checker interface {
	CheckActions(ctx context.Context, usages map[string][]releases.ActionUsage) (*releases.ActionsReport, error)
	ValidateVersions(ctx context.Context, vf *releases.VersionsFile) (*releases.VersionsReport, error)
	CheckLanguages(ctx context.Context, fsys fs.FS, languages []releases.Language) (*releases.LanguageReport, error)
}

var (
	_ command.Commander[CheckActionsCommand]     = (*CheckActionsHandler)(nil)
	_ command.Commander[ValidateVersionsCommand] = (*ValidateVersionsHandler)(nil)
	_ command.Commander[CheckLanguagesCommand]   = (*CheckLanguagesHandler)(nil)
)

// CheckActionsHandler scans workflows under root and reports outdated pins.
type CheckActionsHandler struct {
	inner *commands.Handler[CheckActionsCommand]
}

// NewCheckActionsHandler binds a handler to checker. root is the repository
// root.
func NewCheckActionsHandler(root fs.FS, checker Checker, logger interfaces.Logger, opts ...commands.HandlerOption[CheckActionsCommand]) *CheckActionsHandler {
	exec := func(ctx context.Context, msg CheckActionsCommand) error {
		usages, err := releases.ScanWorkflows(root, msg.WorkflowsDir)
		if err != nil {
			return err
		}
		report, err := checker.CheckActions(ctx, usages)
		if err != nil {
			return err
		}
		if err := report.Write(commands.Output(msg.Output)); err != nil {
			return err
		}
		if report.Failed() {
			return commands.CheckFailed("%d outdated action usage(s)", len(report.Outdated()))
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[CheckActionsCommand]{
		commands.WithLogger[CheckActionsCommand](logger),
		commands.WithOperation[CheckActionsCommand](checkActionsOperation),
		commands.WithMessageFields(func(msg CheckActionsCommand) map[string]any {
			return map[string]any{"workflows_dir": msg.WorkflowsDir}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[CheckActionsCommand](logger)),
	}
	return &CheckActionsHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

// Execute satisfies command.Commander[CheckActionsCommand].
func (h *CheckActionsHandler) Execute(ctx context.Context, msg CheckActionsCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ValidateVersionsHandler checks the versions catalogue under root.
type ValidateVersionsHandler struct {
	inner *commands.Handler[ValidateVersionsCommand]
}

// NewValidateVersionsHandler binds a handler to checker.
func NewValidateVersionsHandler(root fs.FS, checker Checker, logger interfaces.Logger, opts ...commands.HandlerOption[ValidateVersionsCommand]) *ValidateVersionsHandler {
	exec := func(ctx context.Context, msg ValidateVersionsCommand) error {
		vf, err := releases.LoadVersionsFile(root, msg.File)
		if err != nil {
			return err
		}
		report, err := checker.ValidateVersions(ctx, vf)
		if err != nil {
			return err
		}
		if err := report.Write(commands.Output(msg.Output)); err != nil {
			return err
		}
		if report.Failed() {
			return commands.CheckFailed("%d outdated version(s) in %s", len(report.Outdated()), msg.File)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[ValidateVersionsCommand]{
		commands.WithLogger[ValidateVersionsCommand](logger),
		commands.WithOperation[ValidateVersionsCommand](validateVersionsOperation),
		commands.WithMessageFields(func(msg ValidateVersionsCommand) map[string]any {
			return map[string]any{"file": msg.File}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ValidateVersionsCommand](logger)),
	}
	return &ValidateVersionsHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

// Execute satisfies command.Commander[ValidateVersionsCommand].
func (h *ValidateVersionsHandler) Execute(ctx context.Context, msg ValidateVersionsCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CheckLanguagesHandler compares documented language versions with upstream.
type CheckLanguagesHandler struct {
	inner *commands.Handler[CheckLanguagesCommand]
}

// NewCheckLanguagesHandler binds a handler to checker. languages defaults to
// releases.DefaultLanguages when empty.
func NewCheckLanguagesHandler(root fs.FS, checker Checker, languages []releases.Language, logger interfaces.Logger, opts ...commands.HandlerOption[CheckLanguagesCommand]) *CheckLanguagesHandler {
	if len(languages) == 0 {
		languages = releases.DefaultLanguages()
	}
	exec := func(ctx context.Context, msg CheckLanguagesCommand) error {
		selected, err := selectLanguages(languages, msg.Languages)
		if err != nil {
			return err
		}
		report, err := checker.CheckLanguages(ctx, root, selected)
		if err != nil {
			return err
		}
		if err := report.Write(commands.Output(msg.Output)); err != nil {
			return err
		}
		if err := report.AppendGitHubOutput(msg.GitHubOutput); err != nil {
			return err
		}
		if report.Failed() {
			return commands.CheckFailed("%d language(s) with new releases", len(report.NewReleases))
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[CheckLanguagesCommand]{
		commands.WithLogger[CheckLanguagesCommand](logger),
		commands.WithOperation[CheckLanguagesCommand](checkLanguagesOperation),
		commands.WithMessageFields(func(msg CheckLanguagesCommand) map[string]any {
			return map[string]any{"languages": len(msg.Languages), "github_output": msg.GitHubOutput != ""}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[CheckLanguagesCommand](logger)),
	}
	return &CheckLanguagesHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

// Execute satisfies command.Commander[CheckLanguagesCommand].
func (h *CheckLanguagesHandler) Execute(ctx context.Context, msg CheckLanguagesCommand) error {
	return h.inner.Execute(ctx, msg)
}

func selectLanguages(all []releases.Language, names []string) ([]releases.Language, error) {
	if len(names) == 0 {
		return all, nil
	}
	out := make([]releases.Language, 0, len(names))
	for _, lang := range all {
		if slices.Contains(names, lang.Name) {
			out = append(out, lang)
		}
	}
	for _, name := range names {
		if !slices.ContainsFunc(out, func(l releases.Language) bool { return l.Name == name }) {
			return nil, fmt.Errorf("releases: unknown language %q", name)
		}
	}
	return out, nil
}
