package styleguide

import (
	"context"
	"sync"

	"github.com/goliatone/go-styleguide/commands"
	"github.com/goliatone/go-styleguide/internal/catalog"
	"github.com/goliatone/go-styleguide/internal/di"
	"github.com/goliatone/go-styleguide/internal/lint"
	"github.com/goliatone/go-styleguide/internal/ratio"
	"github.com/goliatone/go-styleguide/pkg/interfaces"
)

// Handlers exports the typed command handlers.
type Handlers = commands.HandlerSet

// LintReport exports the linter result.
type LintReport = lint.Report

// RatioReport exports the code-to-text analysis result.
type RatioReport = ratio.Report

// LoadDocumentOptions exports the document loading options.
type LoadDocumentOptions = interfaces.LoadOptions

// CatalogEntry exports the persisted document record.
type CatalogEntry = catalog.Entry

// Module is the embeddable entry point for hosts that drive the tooling from
// Go instead of the styleguide binary.
type Module struct {
	container *di.Container

	once     sync.Once
	handlers *Handlers
	err      error
}

// New constructs a module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Commands returns the command handlers, building them on first use.
func (m *Module) Commands() (*Handlers, error) {
	m.once.Do(func() {
		result, err := commands.RegisterContainerCommands(m.container, commands.RegistrationOptions{})
		if err != nil {
			m.err = err
			return
		}
		m.handlers = result.Set
	})
	return m.handlers, m.err
}

// Markdown returns the document loader and renderer for the docs tree.
func (m *Module) Markdown() (interfaces.MarkdownService, error) {
	svc, err := m.container.MarkdownService()
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// Lint runs the linter over dir, relative to the docs root.
func (m *Module) Lint(ctx context.Context, dir string) (*LintReport, error) {
	linter, err := m.container.Linter()
	if err != nil {
		return nil, err
	}
	return linter.Run(ctx, dir)
}

// Ratio analyses the configured guides directory.
func (m *Module) Ratio(ctx context.Context) (*RatioReport, error) {
	return m.container.RatioAnalyzer().Analyze(ctx, m.container.Config.Ratio.GuidesDir)
}

// CatalogEntries lists the documents recorded in the catalog.
func (m *Module) CatalogEntries(ctx context.Context) ([]*CatalogEntry, error) {
	repo, err := m.container.CatalogRepository(ctx)
	if err != nil {
		return nil, err
	}
	return repo.List(ctx)
}

// Close releases resources the module opened.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}
