// Package catalogcmd exposes the catalog sync as a go-command handler.
package catalogcmd

import (
	"context"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-styleguide/internal/catalog"
	"github.com/goliatone/go-styleguide/internal/commands"
	"github.com/goliatone/go-styleguide/pkg/interfaces"
)

const syncOperation = "catalog.sync"

// DocumentLoader loads the documents to reconcile.
type DocumentLoader interface {
	LoadDirectory(ctx context.Context, dir string, opts interfaces.LoadOptions) ([]*interfaces.Document, error)
}

// Syncer applies documents to the catalog.
type Syncer interface {
	Sync(ctx context.Context, docs []*interfaces.Document, opts catalog.SyncOptions) (*catalog.SyncResult, error)
}

var _ command.Commander[SyncCommand] = (*SyncHandler)(nil)

// SyncHandler loads the docs tree and syncs it into the catalog.
type SyncHandler struct {
	inner *commands.Handler[SyncCommand]
}

// NewSyncHandler binds a handler to loader and syncer.
func NewSyncHandler(loader DocumentLoader, syncer Syncer, logger interfaces.Logger, opts ...commands.HandlerOption[SyncCommand]) *SyncHandler {
	exec := func(ctx context.Context, msg SyncCommand) error {
		dir := msg.Dir
		if dir == "" {
			dir = "."
		}
		recursive := true
		docs, err := loader.LoadDirectory(ctx, dir, interfaces.LoadOptions{Recursive: &recursive})
		if err != nil {
			return err
		}
		result, err := syncer.Sync(ctx, docs, catalog.SyncOptions{
			UpdateExisting: msg.UpdateExisting,
			DeleteOrphaned: msg.DeleteOrphaned,
			DryRun:         msg.DryRun,
		})
		if err != nil {
			return err
		}
		return result.Write(commands.Output(msg.Output))
	}

	handlerOpts := []commands.HandlerOption[SyncCommand]{
		commands.WithLogger[SyncCommand](logger),
		commands.WithOperation[SyncCommand](syncOperation),
		commands.WithMessageFields(func(msg SyncCommand) map[string]any {
			return map[string]any{
				"dir":             msg.Dir,
				"update_existing": msg.UpdateExisting,
				"delete_orphaned": msg.DeleteOrphaned,
				"dry_run":         msg.DryRun,
			}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[SyncCommand](logger)),
	}
	return &SyncHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

// Execute satisfies command.Commander[SyncCommand].
func (h *SyncHandler) Execute(ctx context.Context, msg SyncCommand) error {
	return h.inner.Execute(ctx, msg)
}
