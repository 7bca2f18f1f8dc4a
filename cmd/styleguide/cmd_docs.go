package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	internalcommands "github.com/goliatone/go-styleguide/internal/commands"
	docscmd "github.com/goliatone/go-styleguide/internal/commands/docs"
	"github.com/goliatone/go-styleguide/internal/glossary"
	"github.com/goliatone/go-styleguide/internal/logging"
	"github.com/goliatone/go-styleguide/internal/watch"
)

func newLintCmd(s *session) *cobra.Command {
	var strict, watchMode bool

	cmd := &cobra.Command{
		Use:   "lint [dir]",
		Short: "Lint front matter, structure and links of the docs tree",
		Long: `Lint every Markdown document under the docs directory, or under [dir]
relative to it. Errors fail the run; with --strict warnings do too.
With --watch the tree is linted again after every change until interrupted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg := docscmd.LintCommand{
				Dir:    ".",
				Strict: strict || s.cfg.Lint.Strict,
				Output: cmd.OutOrStdout(),
			}
			if len(args) == 1 {
				msg.Dir = args[0]
			}

			err := s.handlers.Lint.Execute(cmd.Context(), msg)
			if !watchMode {
				return err
			}
			if err != nil && !internalcommands.IsCheckFailed(err) {
				return err
			}
			return s.watchLint(cmd, msg)
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")
	cmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "re-run on file changes")
	return cmd
}

func (s *session) watchLint(cmd *cobra.Command, msg docscmd.LintCommand) error {
	logger := logging.ModuleLogger(s.container.LoggerProvider(), "styleguide.watch")
	watcher, err := watch.New(s.cfg.DocsPath(), watch.Options{
		Debounce:   s.cfg.Lint.WatchDebounce,
		Extensions: []string{".md"},
	}, logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nWatching %s for changes (Ctrl+C to stop)...\n", s.cfg.DocsPath())
	err = watcher.Run(cmd.Context(), func(ctx context.Context, changed []string) error {
		fmt.Fprintf(out, "\n%d file(s) changed, re-linting...\n", len(changed))
		if err := s.handlers.Lint.Execute(ctx, msg); err != nil && !internalcommands.IsCheckFailed(err) {
			return err
		}
		return nil
	})
	if cmd.Context().Err() != nil {
		return nil
	}
	return err
}

func newRatioCmd(s *session) *cobra.Command {
	var guidesDir string

	cmd := &cobra.Command{
		Use:   "ratio",
		Short: "Check the code-to-text ratio of the language guides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if guidesDir == "" {
				guidesDir = s.cfg.Ratio.GuidesDir
			}
			return s.handlers.Ratio.Execute(cmd.Context(), docscmd.RatioCommand{
				GuidesDir: guidesDir,
				Output:    cmd.OutOrStdout(),
			})
		},
	}
	cmd.Flags().StringVar(&guidesDir, "guides-dir", "", "guides directory relative to the repository root")
	return cmd
}

func newGlossaryCmd(s *session) *cobra.Command {
	var scanNew, dryRun, crossRef bool

	cmd := &cobra.Command{
		Use:   "glossary",
		Short: "Regenerate the glossary page",
		Long: `Regenerate the glossary page with terms sorted under letter headings.
With --cross-ref each term gains a "Referenced in" line listing the documents
that mention it. --dry-run prints the result instead of writing it and
--scan-new lists frequent capitalised terms that are not defined yet.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode := glossary.ModeWrite
			switch {
			case scanNew:
				mode = glossary.ModeScanNew
			case dryRun:
				mode = glossary.ModeDryRun
			}
			return s.handlers.Glossary.Execute(cmd.Context(), docscmd.GlossaryCommand{
				Mode:     mode,
				CrossRef: crossRef,
				File:     s.cfg.Path(s.cfg.Glossary.File),
				Output:   cmd.OutOrStdout(),
			})
		},
	}
	cmd.Flags().BoolVar(&scanNew, "scan-new", false, "list candidate terms missing from the glossary")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the glossary instead of writing it")
	cmd.Flags().BoolVar(&crossRef, "cross-ref", false, "list the documents that mention each term")
	cmd.MarkFlagsMutuallyExclusive("scan-new", "dry-run")
	return cmd
}

func newPageIndexCmd(s *session) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "page-index",
		Short: "Write the related-pages index used by the site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output == "" {
				output = s.cfg.PageIndex.Output
			}
			return s.handlers.PageIndex.Execute(cmd.Context(), docscmd.PageIndexCommand{
				File:   s.cfg.Path(output),
				Output: cmd.OutOrStdout(),
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "index file relative to the repository root")
	return cmd
}

func newCleanupCmd(s *session) *cobra.Command {
	var (
		dryRun      bool
		keepFooters bool
		stripKeys   []string
	)

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Strip static metadata that git history already records",
		Long: `Remove the configured front-matter keys (date by default) and static
"Last updated" footers from every document in the docs tree.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("strip-key") {
				stripKeys = s.cfg.Cleanup.StripKeys
			}
			return s.handlers.Cleanup.Execute(cmd.Context(), docscmd.CleanupCommand{
				Dir:         s.cfg.DocsPath(),
				StripKeys:   stripKeys,
				KeepFooters: keepFooters,
				DryRun:      dryRun,
				Output:      cmd.OutOrStdout(),
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report changes without writing")
	cmd.Flags().BoolVar(&keepFooters, "keep-footers", false, "leave static footers in place")
	cmd.Flags().StringSliceVar(&stripKeys, "strip-key", nil, "front-matter key to remove (repeatable)")
	return cmd
}
