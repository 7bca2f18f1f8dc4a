package di_test

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-styleguide/internal/catalog"
	"github.com/goliatone/go-styleguide/internal/di"
	"github.com/goliatone/go-styleguide/internal/runtimeconfig"
	"github.com/goliatone/go-styleguide/pkg/interfaces"
	"github.com/goliatone/go-styleguide/pkg/testsupport"
)

func docsFS() fstest.MapFS {
	return fstest.MapFS{
		"index.md": {Data: []byte("---\ntitle: Home\ndescription: Landing\nauthor: Team\ntags: [home]\ncategory: Overview\nstatus: active\n---\n# Home\n")},
		"guides/bash.md": {Data: []byte("---\ntitle: Bash\ndescription: Shell\nauthor: Team\ntags: [shell]\ncategory: Language Guides\nstatus: active\n---\n# Bash\n\n```bash\necho hi\n```\n")},
	}
}

func TestNewContainerRejectsInvalidConfig(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Ratio.Target = 0
	if _, err := di.NewContainer(cfg); !errors.Is(err, runtimeconfig.ErrRatioTargetInvalid) {
		t.Fatalf("expected ratio target error, got %v", err)
	}
}

func TestContainerLinterUsesDocsFS(t *testing.T) {
	container, err := di.NewContainer(runtimeconfig.DefaultConfig(), di.WithDocsFS(docsFS()))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	linter, err := container.Linter()
	if err != nil {
		t.Fatalf("Linter: %v", err)
	}
	again, _ := container.Linter()
	if linter != again {
		t.Fatal("expected linter to be reused")
	}

	report, err := linter.Run(context.Background(), ".")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Files != 2 || report.Errors != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestContainerLinterSchemaFileMissing(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.RepoRoot = t.TempDir()
	cfg.Lint.SchemaFile = "schema.json"
	container, err := di.NewContainer(cfg, di.WithDocsFS(docsFS()))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	if _, err := container.Linter(); err == nil {
		t.Fatal("expected missing schema file to fail")
	}
}

func TestContainerPageIndexLoadsDocs(t *testing.T) {
	container, err := di.NewContainer(runtimeconfig.DefaultConfig(), di.WithDocsFS(docsFS()))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	svc, err := container.MarkdownService()
	if err != nil {
		t.Fatalf("MarkdownService: %v", err)
	}
	docs, err := svc.LoadDirectory(context.Background(), ".", interfaces.LoadOptions{})
	if err != nil {
		t.Fatalf("LoadDirectory: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 docs, got %d", len(docs))
	}
	if _, err := container.PageIndex(); err != nil {
		t.Fatalf("PageIndex: %v", err)
	}
}

func TestContainerCatalogSyncWithCache(t *testing.T) {
	ctx := context.Background()
	cfg := runtimeconfig.DefaultConfig()
	cfg.Catalog.DSN = testsupport.SQLiteMemoryDSN(t.Name())
	cfg.Catalog.Cache = true

	container, err := di.NewContainer(cfg, di.WithDocsFS(docsFS()))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	svc, err := container.MarkdownService()
	if err != nil {
		t.Fatalf("MarkdownService: %v", err)
	}
	docs, err := svc.LoadDirectory(ctx, ".", interfaces.LoadOptions{})
	if err != nil {
		t.Fatalf("LoadDirectory: %v", err)
	}

	syncer, err := container.CatalogSyncer(ctx)
	if err != nil {
		t.Fatalf("CatalogSyncer: %v", err)
	}
	result, err := syncer.Sync(ctx, docs, catalog.SyncOptions{})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(result.Created) != 2 {
		t.Fatalf("expected 2 created entries, got %+v", result)
	}

	repo, err := container.CatalogRepository(ctx)
	if err != nil {
		t.Fatalf("CatalogRepository: %v", err)
	}
	entry, err := repo.GetByPath(ctx, "guides/bash.md")
	if err != nil {
		t.Fatalf("GetByPath: %v", err)
	}
	if entry.Title != "Bash" || entry.Section != "guides" {
		t.Fatalf("unexpected entry %+v", entry)
	}

	if err := container.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := container.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestContainerKeepsInjectedDatabaseOpen(t *testing.T) {
	ctx := context.Background()
	db, err := testsupport.NewSQLiteMemoryDB(t.Name())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	container, err := di.NewContainer(runtimeconfig.DefaultConfig(), di.WithBunDB(db))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	if _, err := container.CatalogRepository(ctx); err != nil {
		t.Fatalf("CatalogRepository: %v", err)
	}
	if err := container.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("expected injected db to stay open: %v", err)
	}
}
