package main

import (
	"github.com/spf13/cobra"

	releasescmd "github.com/goliatone/go-styleguide/internal/commands/releases"
)

func newActionsCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "actions",
		Short: "Report GitHub Actions pinned behind their latest major version",
		Long: `Scan the workflow files for "uses: owner/repo@ref" pins and compare each
with the latest release on GitHub. Requires GITHUB_TOKEN. Outdated pins
fail the run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.handlers.CheckActions.Execute(cmd.Context(), releasescmd.CheckActionsCommand{
				WorkflowsDir: s.cfg.Releases.WorkflowsDir,
				Output:       cmd.OutOrStdout(),
			})
		},
	}
}

func newVersionsCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "versions",
		Short: "Validate the documented tool versions against upstream releases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.handlers.ValidateVersions.Execute(cmd.Context(), releasescmd.ValidateVersionsCommand{
				File:   s.cfg.Releases.VersionsFile,
				Output: cmd.OutOrStdout(),
			})
		},
	}
}

func newLanguagesCmd(s *session) *cobra.Command {
	var languages []string

	cmd := &cobra.Command{
		Use:   "languages [name...]",
		Short: "Check language registries for releases newer than the guides",
		Long: `Query each language's registry or GitHub releases and compare the latest
version with the one the guide documents. When GITHUB_OUTPUT is set the
new releases are appended to it as new_releases=<json>.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.handlers.CheckLanguages.Execute(cmd.Context(), releasescmd.CheckLanguagesCommand{
				Languages:    append(languages, args...),
				GitHubOutput: s.cfg.Releases.OutputFile,
				Output:       cmd.OutOrStdout(),
			})
		},
	}
	cmd.Flags().StringSliceVarP(&languages, "language", "l", nil, "language to check (repeatable)")
	return cmd
}
