// Command styleguide maintains a coding style guide repository: it lints the
// docs tree, checks the code-to-text ratio of the language guides, keeps the
// glossary, changelog and dashboard pages current and tracks upstream
// releases of the tools the guides document.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-styleguide/commands"
	internalcommands "github.com/goliatone/go-styleguide/internal/commands"
	"github.com/goliatone/go-styleguide/internal/di"
	"github.com/goliatone/go-styleguide/internal/runtimeconfig"
)

// containerBuilder is swapped by tests to inject fakes into the container.
var containerBuilder = di.NewContainer

type globalFlags struct {
	configFile string
	repoRoot   string
	logLevel   string
}

// session holds what the root command resolves before any subcommand runs.
type session struct {
	flags     globalFlags
	cfg       runtimeconfig.Config
	container *di.Container
	handlers  *commands.HandlerSet
	options   []di.Option
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the CLI and maps the outcome to a process exit code. Check
// failures have already been reported by the handler, so only other errors
// are printed.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, opts ...di.Option) int {
	s := &session{options: opts}
	root := newRootCmd(s)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if closeErr := s.close(); err == nil {
		err = closeErr
	}
	switch {
	case err == nil:
		return 0
	case internalcommands.IsCheckFailed(err):
		return 1
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
}

func newRootCmd(s *session) *cobra.Command {
	root := &cobra.Command{
		Use:   "styleguide",
		Short: "Maintenance tooling for a coding style guide repository",
		Long: `styleguide validates and regenerates the documentation of a style guide
repository. Configuration is read from .styleguide.yml in the repository
root, then .env, then the environment (GITHUB_TOKEN, GITHUB_OUTPUT,
STYLEGUIDE_LOG_LEVEL, STYLEGUIDE_ROOT).`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: s.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&s.flags.configFile, "config", "c", "", "config file (default <root>/.styleguide.yml)")
	flags.StringVar(&s.flags.repoRoot, "root", "", "repository root (default .)")
	flags.StringVar(&s.flags.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")

	root.AddCommand(
		newLintCmd(s),
		newRatioCmd(s),
		newGlossaryCmd(s),
		newPageIndexCmd(s),
		newCleanupCmd(s),
		newChangelogCmd(s),
		newDashboardCmd(s),
		newActionsCmd(s),
		newVersionsCmd(s),
		newLanguagesCmd(s),
		newCatalogCmd(s),
		newPreviewCmd(s),
	)
	return root
}

func (s *session) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := runtimeconfig.Load(runtimeconfig.LoadOptions{
		File:     s.flags.configFile,
		RepoRoot: s.flags.repoRoot,
	})
	if err != nil {
		return err
	}
	if s.flags.logLevel != "" {
		cfg.Logging.Level = s.flags.logLevel
	}

	container, err := containerBuilder(cfg, s.options...)
	if err != nil {
		return err
	}
	result, err := commands.RegisterContainerCommands(container, commands.RegistrationOptions{})
	if err != nil {
		container.Close()
		return err
	}

	s.cfg = cfg
	s.container = container
	s.handlers = result.Set
	return nil
}

func (s *session) close() error {
	if s.container == nil {
		return nil
	}
	err := s.container.Close()
	s.container = nil
	return err
}
