package commands

import (
	"context"

	"github.com/goliatone/go-styleguide/internal/catalog"
	"github.com/goliatone/go-styleguide/internal/di"
	"github.com/goliatone/go-styleguide/internal/lint"
	"github.com/goliatone/go-styleguide/internal/pageindex"
	"github.com/goliatone/go-styleguide/pkg/interfaces"
)

type lazyLinter struct {
	container *di.Container
}

func (l lazyLinter) Run(ctx context.Context, dir string) (*lint.Report, error) {
	linter, err := l.container.Linter()
	if err != nil {
		return nil, err
	}
	return linter.Run(ctx, dir)
}

type lazyPageIndexer struct {
	container *di.Container
}

func (l lazyPageIndexer) Generate(ctx context.Context, output string) (*pageindex.Index, error) {
	generator, err := l.container.PageIndex()
	if err != nil {
		return nil, err
	}
	return generator.Generate(ctx, output)
}

type lazyCatalog struct {
	container *di.Container
}

func (l lazyCatalog) LoadDirectory(ctx context.Context, dir string, opts interfaces.LoadOptions) ([]*interfaces.Document, error) {
	svc, err := l.container.MarkdownService()
	if err != nil {
		return nil, err
	}
	return svc.LoadDirectory(ctx, dir, opts)
}

func (l lazyCatalog) Sync(ctx context.Context, docs []*interfaces.Document, opts catalog.SyncOptions) (*catalog.SyncResult, error) {
	syncer, err := l.container.CatalogSyncer(ctx)
	if err != nil {
		return nil, err
	}
	return syncer.Sync(ctx, docs, opts)
}
