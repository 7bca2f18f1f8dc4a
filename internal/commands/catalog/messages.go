package catalogcmd

import (
	"io"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const syncMessageType = "styleguide.catalog.sync"

// SyncCommand reconciles the catalog with the docs tree.
type SyncCommand struct {
	// Dir is relative to the docs root; empty means the whole tree.
	Dir            string    `json:"dir,omitempty"`
	UpdateExisting bool      `json:"update_existing,omitempty"`
	DeleteOrphaned bool      `json:"delete_orphaned,omitempty"`
	DryRun         bool      `json:"dry_run,omitempty"`
	Output         io.Writer `json:"-"`
}

// Type implements command.Message.
func (SyncCommand) Type() string { return syncMessageType }

// Validate rejects orphan deletion for a partial tree, which would remove
// every entry outside Dir.
func (cmd SyncCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.DeleteOrphaned, validation.By(func(any) error {
			if cmd.DeleteOrphaned && cmd.Dir != "" && cmd.Dir != "." {
				return validation.NewError("styleguide.catalog.partial_delete", "delete orphaned requires syncing the whole docs tree")
			}
			return nil
		})),
	)
}
