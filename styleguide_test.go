package styleguide_test

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"

	styleguide "github.com/goliatone/go-styleguide"
	catalogcmd "github.com/goliatone/go-styleguide/internal/commands/catalog"
	"github.com/goliatone/go-styleguide/internal/di"
	"github.com/goliatone/go-styleguide/pkg/testsupport"
)

const guide = "---\ntitle: Bash\ndescription: Shell\nauthor: Team\ntags: [shell]\ncategory: Language Guides\nstatus: active\n---\n# Bash\n\nText.\n\n```bash\necho one\necho two\necho three\necho four\n```\n"

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*styleguide.Config)
		want   error
	}{
		{name: "ratio target", mutate: func(c *styleguide.Config) { c.Ratio.Target = 0 }, want: styleguide.ErrRatioTargetInvalid},
		{name: "docs dir", mutate: func(c *styleguide.Config) { c.Docs.Dir = " " }, want: styleguide.ErrDocsDirRequired},
		{name: "catalog driver", mutate: func(c *styleguide.Config) { c.Catalog.Driver = "oracle" }, want: styleguide.ErrCatalogDriverUnknown},
		{name: "logging level", mutate: func(c *styleguide.Config) { c.Logging.Level = "loud" }, want: styleguide.ErrLoggingLevelInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := styleguide.DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if _, err := styleguide.New(cfg); !errors.Is(err, tc.want) {
				t.Fatalf("expected New to reject config with %v, got %v", tc.want, err)
			}
		})
	}
}

func TestMigrationsCoverEveryDialect(t *testing.T) {
	for _, dialect := range []string{"sqlite", "postgres"} {
		matches, err := fs.Glob(styleguide.GetMigrationsFS(), dialect+"/*.sql")
		if err != nil {
			t.Fatalf("glob: %v", err)
		}
		if len(matches) == 0 {
			t.Fatalf("expected %s migrations", dialect)
		}
	}
}

func newModule(t *testing.T) *styleguide.Module {
	t.Helper()
	cfg := styleguide.DefaultConfig()
	cfg.Catalog.DSN = testsupport.SQLiteMemoryDSN(t.Name())

	docs := fstest.MapFS{"02_language_guides/bash.md": {Data: []byte(guide)}}
	root := fstest.MapFS{"docs/02_language_guides/bash.md": {Data: []byte(guide)}}
	module, err := styleguide.New(cfg, di.WithDocsFS(docs), di.WithRootFS(root))
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	t.Cleanup(func() { _ = module.Close() })
	return module
}

func TestModuleRunsChecks(t *testing.T) {
	module := newModule(t)
	ctx := context.Background()

	report, err := module.Lint(ctx, ".")
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if report.Files != 1 || report.Failed() {
		t.Fatalf("unexpected lint report %+v", report)
	}

	ratioReport, err := module.Ratio(ctx)
	if err != nil {
		t.Fatalf("ratio: %v", err)
	}
	if len(ratioReport.Guides) != 1 || ratioReport.Guides[0].Name != "bash" {
		t.Fatalf("unexpected ratio report %+v", ratioReport)
	}

	md, err := module.Markdown()
	if err != nil {
		t.Fatalf("markdown: %v", err)
	}
	doc, err := md.Load(ctx, "02_language_guides/bash.md", styleguide.LoadDocumentOptions{})
	if err != nil || doc.FrontMatter.Title != "Bash" {
		t.Fatalf("unexpected document %+v, err %v", doc, err)
	}
}

func TestModuleCommandsSyncCatalog(t *testing.T) {
	module := newModule(t)
	ctx := context.Background()

	handlers, err := module.Commands()
	if err != nil {
		t.Fatalf("commands: %v", err)
	}
	again, _ := module.Commands()
	if handlers != again {
		t.Fatal("expected handlers to be built once")
	}

	var out bytes.Buffer
	if err := handlers.CatalogSync.Execute(ctx, catalogcmd.SyncCommand{Output: &out}); err != nil {
		t.Fatalf("sync: %v", err)
	}
	entries, err := module.CatalogEntries(ctx)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 1 || entries[0].Path != "02_language_guides/bash.md" {
		t.Fatalf("unexpected entries %+v", entries)
	}
}
