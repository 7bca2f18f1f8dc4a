package main

import (
	"github.com/spf13/cobra"

	catalogcmd "github.com/goliatone/go-styleguide/internal/commands/catalog"
)

func newCatalogCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the document catalog database",
	}
	cmd.AddCommand(newCatalogSyncCmd(s))
	return cmd
}

func newCatalogSyncCmd(s *session) *cobra.Command {
	var msg catalogcmd.SyncCommand

	cmd := &cobra.Command{
		Use:   "sync [dir]",
		Short: "Reconcile the catalog with the docs tree",
		Long: `Record every document of the docs tree, or of [dir] relative to it, in the
catalog database. Unchanged documents are skipped by checksum.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				msg.Dir = args[0]
			}
			msg.Output = cmd.OutOrStdout()
			return s.handlers.CatalogSync.Execute(cmd.Context(), msg)
		},
	}
	cmd.Flags().BoolVar(&msg.UpdateExisting, "update", false, "update entries whose content changed")
	cmd.Flags().BoolVar(&msg.DeleteOrphaned, "delete-orphaned", false, "remove entries for deleted documents")
	cmd.Flags().BoolVar(&msg.DryRun, "dry-run", false, "report changes without writing")
	return cmd
}
