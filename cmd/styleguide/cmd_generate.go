package main

import (
	"github.com/spf13/cobra"

	generatecmd "github.com/goliatone/go-styleguide/internal/commands/generate"
)

func newChangelogCmd(s *session) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "changelog",
		Short: "Regenerate the changelog page from GitHub releases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output == "" {
				output = s.cfg.Changelog.Output
			}
			return s.handlers.Changelog.Execute(cmd.Context(), generatecmd.ChangelogCommand{
				File:   s.cfg.Path(output),
				Output: cmd.OutOrStdout(),
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "changelog file relative to the repository root")
	return cmd
}

func newDashboardCmd(s *session) *cobra.Command {
	var (
		output      string
		metricsFile string
		withLint    bool
	)

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Regenerate the project status page",
		Long: `Regenerate the project status page from the ratio report, the docs tree,
git history and open GitHub issues. --metrics writes the same figures as
Prometheus gauges, --lint adds a lint summary section.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output == "" {
				output = s.cfg.Dashboard.Output
			}
			if metricsFile == "" {
				metricsFile = s.cfg.Dashboard.MetricsFile
			}
			return s.handlers.Dashboard.Execute(cmd.Context(), generatecmd.DashboardCommand{
				File:        s.cfg.Path(output),
				MetricsFile: s.cfg.Path(metricsFile),
				IncludeLint: withLint,
				Output:      cmd.OutOrStdout(),
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "status page relative to the repository root")
	cmd.Flags().StringVar(&metricsFile, "metrics", "", "also write Prometheus metrics to this file")
	cmd.Flags().BoolVar(&withLint, "lint", false, "include a lint summary")
	return cmd
}
