package commands

import (
	"errors"

	catalogcmd "github.com/goliatone/go-styleguide/internal/commands/catalog"
	docscmd "github.com/goliatone/go-styleguide/internal/commands/docs"
	generatecmd "github.com/goliatone/go-styleguide/internal/commands/generate"
	releasescmd "github.com/goliatone/go-styleguide/internal/commands/releases"
	"github.com/goliatone/go-styleguide/internal/di"
	"github.com/goliatone/go-styleguide/pkg/interfaces"
)

// CommandRegistry records command handlers so hosts can expose them through their own surfaces.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CommandDispatcher subscribes command handlers to a dispatcher implementation.
type CommandDispatcher interface {
	RegisterCommand(handler any) (CommandSubscription, error)
}

// CommandSubscription allows hosts to tear down dispatcher subscriptions.
type CommandSubscription interface {
	Unsubscribe()
}

// RegistrationOptions configures how handlers are registered during construction.
type RegistrationOptions struct {
	Registry       CommandRegistry
	Dispatcher     CommandDispatcher
	LoggerProvider interfaces.LoggerProvider
}

// HandlerSet exposes the typed handlers so callers can execute them directly.
type HandlerSet struct {
	Lint      *docscmd.LintHandler
	Ratio     *docscmd.RatioHandler
	Glossary  *docscmd.GlossaryHandler
	PageIndex *docscmd.PageIndexHandler
	Cleanup   *docscmd.CleanupHandler

	Changelog *generatecmd.ChangelogHandler
	Dashboard *generatecmd.DashboardHandler

	CheckActions     *releasescmd.CheckActionsHandler
	ValidateVersions *releasescmd.ValidateVersionsHandler
	CheckLanguages   *releasescmd.CheckLanguagesHandler

	CatalogSync *catalogcmd.SyncHandler
}

// RegistrationResult captures the constructed command handlers and any dispatcher subscriptions.
type RegistrationResult struct {
	Set           *HandlerSet
	Handlers      []any
	Subscriptions []CommandSubscription
}

// RegisterContainerCommands builds the command handlers exposed by the provided container and
// optionally registers them with registry/dispatcher integrations. Dependencies that read the
// docs tree or open the catalog database are resolved when a handler first runs.
func RegisterContainerCommands(container *di.Container, opts RegistrationOptions) (*RegistrationResult, error) {
	if container == nil {
		return &RegistrationResult{Set: &HandlerSet{}}, errors.New("commands: container is required")
	}

	provider := opts.LoggerProvider
	if provider == nil {
		provider = container.LoggerProvider()
	}

	result := &RegistrationResult{
		Set:           &HandlerSet{},
		Handlers:      make([]any, 0),
		Subscriptions: make([]CommandSubscription, 0),
	}

	var errs error

	register := func(handler any) {
		if handler == nil {
			return
		}
		result.Handlers = append(result.Handlers, handler)

		if opts.Registry != nil {
			if err := opts.Registry.RegisterCommand(handler); err != nil {
				errs = errors.Join(errs, err)
			}
		}

		if opts.Dispatcher != nil {
			subscription, err := opts.Dispatcher.RegisterCommand(handler)
			if err != nil {
				errs = errors.Join(errs, err)
			} else if subscription != nil {
				result.Subscriptions = append(result.Subscriptions, subscription)
			}
		}
	}

	loggerFor := func(module string) interfaces.Logger {
		return CommandLogger(provider, module)
	}

	set := result.Set
	linter := lazyLinter{container: container}

	// Docs commands.
	docsLogger := loggerFor("docs")
	set.Lint = docscmd.NewLintHandler(linter, docsLogger)
	set.Ratio = docscmd.NewRatioHandler(container.RatioAnalyzer(), docsLogger)
	set.Glossary = docscmd.NewGlossaryHandler(container.Glossary(), docsLogger)
	set.PageIndex = docscmd.NewPageIndexHandler(lazyPageIndexer{container: container}, docsLogger)
	set.Cleanup = docscmd.NewCleanupHandler(container.Cleanup(), docsLogger)
	register(set.Lint)
	register(set.Ratio)
	register(set.Glossary)
	register(set.PageIndex)
	register(set.Cleanup)

	// Generator commands.
	generateLogger := loggerFor("generate")
	set.Changelog = generatecmd.NewChangelogHandler(container.Changelog(), generateLogger)
	set.Dashboard = generatecmd.NewDashboardHandler(container.Dashboard(), linter, generateLogger)
	register(set.Changelog)
	register(set.Dashboard)

	// Release commands.
	releasesLogger := loggerFor("releases")
	checker := container.Checker()
	root := container.RootFS()
	set.CheckActions = releasescmd.NewCheckActionsHandler(root, checker, releasesLogger)
	set.ValidateVersions = releasescmd.NewValidateVersionsHandler(root, checker, releasesLogger)
	set.CheckLanguages = releasescmd.NewCheckLanguagesHandler(root, checker, nil, releasesLogger)
	register(set.CheckActions)
	register(set.ValidateVersions)
	register(set.CheckLanguages)

	// Catalog commands.
	catalogLazy := lazyCatalog{container: container}
	set.CatalogSync = catalogcmd.NewSyncHandler(catalogLazy, catalogLazy, loggerFor("catalog"))
	register(set.CatalogSync)

	return result, errs
}
