package di

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-styleguide/internal/catalog"
	"github.com/goliatone/go-styleguide/internal/changelog"
	"github.com/goliatone/go-styleguide/internal/cleanup"
	"github.com/goliatone/go-styleguide/internal/dashboard"
	"github.com/goliatone/go-styleguide/internal/glossary"
	"github.com/goliatone/go-styleguide/internal/lint"
	"github.com/goliatone/go-styleguide/internal/logging"
	"github.com/goliatone/go-styleguide/internal/logging/console"
	"github.com/goliatone/go-styleguide/internal/logging/gologger"
	"github.com/goliatone/go-styleguide/internal/markdown"
	"github.com/goliatone/go-styleguide/internal/pageindex"
	"github.com/goliatone/go-styleguide/internal/ratio"
	"github.com/goliatone/go-styleguide/internal/releases"
	"github.com/goliatone/go-styleguide/internal/runtimeconfig"
	"github.com/goliatone/go-styleguide/internal/validation"
	"github.com/goliatone/go-styleguide/pkg/interfaces"
)

const defaultCacheTTL = time.Minute

// Container wires the tool services from a runtime configuration. Services
// that touch the filesystem or a database are built on first use.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	httpClient     *http.Client
	rootFS         fs.FS
	docsFS         fs.FS
	git            dashboard.GitRunner
	now            func() time.Time
	registries     releases.Registries

	bunDB         *bun.DB
	ownsDB        bool
	migrated      bool
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	mu          sync.Mutex
	markdownSvc *markdown.Service
	linter      *lint.Linter
	github      *releases.GitHubClient
	registry    *releases.RegistryClient
	checker     *releases.Checker
	catalogRepo *catalog.BunRepository
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider selected by Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithHTTPClient overrides the client used for GitHub and registry calls.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Container) {
		c.httpClient = client
	}
}

// WithRegistries overrides the registry base URLs.
func WithRegistries(urls releases.Registries) Option {
	return func(c *Container) {
		c.registries = urls
	}
}

// WithRootFS overrides the repository filesystem.
func WithRootFS(fsys fs.FS) Option {
	return func(c *Container) {
		c.rootFS = fsys
	}
}

// WithDocsFS overrides the docs filesystem.
func WithDocsFS(fsys fs.FS) Option {
	return func(c *Container) {
		c.docsFS = fsys
	}
}

// WithGitRunner overrides how the dashboard runs git.
func WithGitRunner(runner dashboard.GitRunner) Option {
	return func(c *Container) {
		c.git = runner
	}
}

// WithClock overrides the timestamp source of the generators.
func WithClock(now func() time.Time) Option {
	return func(c *Container) {
		c.now = now
	}
}

// WithBunDB supplies the catalog database. The caller keeps ownership.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the catalog cache service.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// NewContainer validates cfg and applies opts.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		Config: cfg,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	if c.rootFS == nil {
		c.rootFS = os.DirFS(cfg.RepoRoot)
	}
	if c.git == nil {
		c.git = dashboard.ExecGit{Dir: cfg.RepoRoot}
	}
	c.configureCacheDefaults()

	logging.ModuleLogger(c.loggerProvider, "styleguide.di").Debug("container.configured",
		"repo_root", cfg.RepoRoot,
		"docs_dir", cfg.Docs.Dir,
		"catalog_driver", cfg.Catalog.Driver,
		"catalog_cache", cfg.Catalog.Cache,
	)
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil {
		return nil
	}
	logCfg := c.Config.Logging
	switch strings.ToLower(strings.TrimSpace(logCfg.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     logCfg.Level,
			Format:    logCfg.Format,
			AddSource: logCfg.AddSource,
			Focus:     logCfg.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		opts := console.Options{OmitTimestamp: true}
		if level, ok := console.ParseLevel(logCfg.Level); ok {
			opts.MinLevel = &level
		}
		c.loggerProvider = console.NewProvider(opts)
	}
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Catalog.Cache {
		return
	}
	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		cfg.TTL = defaultCacheTTL
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		}
	}
	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

// LoggerProvider exposes the configured provider.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// RootFS exposes the repository filesystem.
func (c *Container) RootFS() fs.FS {
	return c.rootFS
}

// MarkdownService returns the docs loader, opening the docs directory on
// first use.
func (c *Container) MarkdownService() (*markdown.Service, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.markdownServiceLocked()
}

func (c *Container) markdownServiceLocked() (*markdown.Service, error) {
	if c.markdownSvc != nil {
		return c.markdownSvc, nil
	}
	docs := c.Config.Docs
	svc, err := markdown.NewService(markdown.Config{
		BasePath:  c.Config.DocsPath(),
		Pattern:   docs.Pattern,
		Recursive: true,
		Exclude:   docs.Exclude,
		Parser: interfaces.ParseOptions{
			Extensions: docs.Parser.Extensions,
			HardWraps:  docs.Parser.HardWraps,
			SafeMode:   docs.Parser.SafeMode,
		},
		FS: c.docsFS,
	}, nil)
	if err != nil {
		return nil, err
	}
	c.markdownSvc = svc
	return svc, nil
}

// DocsFS returns the filesystem rooted at the docs directory.
func (c *Container) DocsFS() fs.FS {
	if c.docsFS != nil {
		return c.docsFS
	}
	return os.DirFS(c.Config.DocsPath())
}

// Linter returns the docs linter. A configured schema file is compiled on
// first use.
func (c *Container) Linter() (*lint.Linter, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.linter != nil {
		return c.linter, nil
	}

	lintCfg := c.Config.Lint
	var schema *validation.Schema
	if file := strings.TrimSpace(lintCfg.SchemaFile); file != "" {
		compiled, err := validation.LoadSchemaFile(c.Config.Path(file))
		if err != nil {
			return nil, err
		}
		schema = compiled
	}

	c.linter = lint.New(c.DocsFS(), lint.Options{
		RequiredKeys:        lintCfg.RequiredKeys,
		AllowedStatuses:     lintCfg.AllowedStatuses,
		Disabled:            lintCfg.Disabled,
		Strict:              lintCfg.Strict,
		ModuleTagExtensions: lintCfg.ModuleTagExtensions,
		Workers:             lintCfg.Workers,
		Pattern:             c.Config.Docs.Pattern,
		Exclude:             c.Config.Docs.Exclude,
		Schema:              schema,
	}, logging.LintLogger(c.loggerProvider))
	return c.linter, nil
}

// RatioOptions returns the analyzer settings shared by ratio and dashboard.
func (c *Container) RatioOptions() ratio.Options {
	return ratio.Options{Target: c.Config.Ratio.Target, Exempt: c.Config.Ratio.Exempt}
}

// RatioAnalyzer measures guides within the repository filesystem.
func (c *Container) RatioAnalyzer() *ratio.Analyzer {
	return ratio.NewAnalyzer(c.rootFS, c.RatioOptions(), logging.RatioLogger(c.loggerProvider))
}

// Glossary returns the glossary service over the repository filesystem.
func (c *Container) Glossary() *glossary.Service {
	cfg := c.Config.Glossary
	return glossary.NewService(c.rootFS, glossary.Options{
		DocsDir:        c.Config.Docs.Dir,
		File:           cfg.File,
		MinOccurrences: cfg.MinOccurrences,
		MaxReferences:  cfg.MaxReferences,
		Repository:     c.Config.GitHub.Repository,
	}, logging.GlossaryLogger(c.loggerProvider))
}

// PageIndex returns the related-page index generator.
func (c *Container) PageIndex() (*pageindex.Generator, error) {
	svc, err := c.MarkdownService()
	if err != nil {
		return nil, err
	}
	return pageindex.NewGenerator(svc, logging.GeneratorLogger(c.loggerProvider)), nil
}

func (c *Container) clientOptions() releases.ClientOptions {
	gh := c.Config.GitHub
	return releases.ClientOptions{
		HTTPClient:        c.httpClient,
		Timeout:           gh.Timeout,
		RequestsPerSecond: gh.RequestsPerSecond,
		Retries:           gh.Retries,
	}
}

// GitHubClient returns the shared GitHub client.
func (c *Container) GitHubClient() *releases.GitHubClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.githubLocked()
}

func (c *Container) githubLocked() *releases.GitHubClient {
	if c.github == nil {
		gh := c.Config.GitHub
		c.github = releases.NewGitHubClient(gh.Token, gh.APIURL, c.clientOptions(), logging.ReleasesLogger(c.loggerProvider))
	}
	return c.github
}

// RegistryClient returns the shared package registry client.
func (c *Container) RegistryClient() *releases.RegistryClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registryLocked()
}

func (c *Container) registryLocked() *releases.RegistryClient {
	if c.registry == nil {
		c.registry = releases.NewRegistryClient(c.registries, c.clientOptions(), logging.ReleasesLogger(c.loggerProvider))
	}
	return c.registry
}

// Checker returns the version checker.
func (c *Container) Checker() *releases.Checker {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.checker == nil {
		c.checker = releases.NewChecker(c.githubLocked(), c.registryLocked(), logging.ReleasesLogger(c.loggerProvider))
	}
	return c.checker
}

// Changelog returns the changelog generator for the configured repository.
func (c *Container) Changelog() *changelog.Generator {
	return changelog.NewGenerator(c.GitHubClient(), c.Config.GitHub.Repository,
		logging.GeneratorLogger(c.loggerProvider), changelog.WithClock(c.now))
}

// Dashboard returns the project status generator.
func (c *Container) Dashboard() *dashboard.Generator {
	cfg := c.Config
	return dashboard.NewGenerator(c.rootFS, dashboard.Options{
		DocsDir:      cfg.Docs.Dir,
		GuidesDir:    cfg.Ratio.GuidesDir,
		TemplatesDir: cfg.Dashboard.TemplatesDir,
		PyProject:    cfg.Dashboard.PyProject,
		Repository:   cfg.GitHub.Repository,
		Ratio:        c.RatioOptions(),
	}, logging.GeneratorLogger(c.loggerProvider),
		dashboard.WithGitHub(c.GitHubClient()),
		dashboard.WithGit(c.git),
		dashboard.WithClock(c.now),
	)
}

// Cleanup returns the static metadata runner.
func (c *Container) Cleanup() *cleanup.Runner {
	return cleanup.NewRunner(logging.ModuleLogger(c.loggerProvider, "styleguide.cleanup"))
}

// CatalogDB opens and migrates the catalog database on first use.
func (c *Container) CatalogDB(ctx context.Context) (*bun.DB, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.catalogDBLocked(ctx)
}

func (c *Container) catalogDBLocked(ctx context.Context) (*bun.DB, error) {
	if c.bunDB == nil {
		db, err := catalog.Open(c.Config.Catalog.Driver, c.Config.Catalog.DSN)
		if err != nil {
			return nil, err
		}
		c.bunDB = db
		c.ownsDB = true
	}
	if !c.migrated {
		applied, err := catalog.Migrate(ctx, c.bunDB)
		if err != nil {
			return nil, fmt.Errorf("catalog: migrate: %w", err)
		}
		c.migrated = true
		if len(applied) > 0 {
			logging.CatalogLogger(c.loggerProvider).Info("catalog.migrated", "applied", applied)
		}
	}
	return c.bunDB, nil
}

// CatalogRepository returns the catalog repository, cached when
// Config.Catalog.Cache is set.
func (c *Container) CatalogRepository(ctx context.Context) (*catalog.BunRepository, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.catalogRepo != nil {
		return c.catalogRepo, nil
	}
	db, err := c.catalogDBLocked(ctx)
	if err != nil {
		return nil, err
	}
	if c.cacheService != nil && c.keySerializer != nil {
		c.catalogRepo = catalog.NewBunRepositoryWithCache(db, c.cacheService, c.keySerializer)
	} else {
		c.catalogRepo = catalog.NewBunRepository(db)
	}
	return c.catalogRepo, nil
}

// CatalogSyncer returns a syncer over the catalog repository.
func (c *Container) CatalogSyncer(ctx context.Context) (*catalog.Syncer, error) {
	repo, err := c.CatalogRepository(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.NewSyncer(repo, logging.CatalogLogger(c.loggerProvider), catalog.WithClock(c.now)), nil
}

// Close releases the catalog database when the container opened it.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bunDB == nil || !c.ownsDB {
		return nil
	}
	err := c.bunDB.Close()
	c.bunDB, c.ownsDB, c.migrated, c.catalogRepo = nil, false, false, nil
	return err
}
