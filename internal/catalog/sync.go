// Package catalog keeps a database record of every documentation page so
// other tooling can query sections, statuses and code density without
// re-parsing the docs tree.
package catalog

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/goliatone/go-styleguide/internal/logging"
	"github.com/goliatone/go-styleguide/pkg/interfaces"
)

// SyncOptions selects which mutations Sync may perform.
type SyncOptions struct {
	UpdateExisting bool
	DeleteOrphaned bool
	DryRun         bool
}

// SyncResult lists affected paths per outcome.
type SyncResult struct {
	Created []string
	Updated []string
	Skipped []string
	Deleted []string
	DryRun  bool
}

// Write prints a one-line summary followed by the changed paths.
func (r *SyncResult) Write(w io.Writer) error {
	prefix := "Catalog sync"
	if r.DryRun {
		prefix += " (dry run)"
	}
	if _, err := fmt.Fprintf(w, "%s: %d created, %d updated, %d skipped, %d deleted\n",
		prefix, len(r.Created), len(r.Updated), len(r.Skipped), len(r.Deleted)); err != nil {
		return err
	}
	groups := []struct {
		label string
		paths []string
	}{
		{"+", r.Created},
		{"~", r.Updated},
		{"-", r.Deleted},
	}
	for _, group := range groups {
		for _, p := range group.paths {
			if _, err := fmt.Fprintf(w, "  %s %s\n", group.label, p); err != nil {
				return err
			}
		}
	}
	return nil
}

// Syncer reconciles loaded documents with the catalog repository.
type Syncer struct {
	repo   Repository
	logger interfaces.Logger
	now    func() time.Time
}

// SyncerOption customises a Syncer.
type SyncerOption func(*Syncer)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) SyncerOption {
	return func(s *Syncer) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSyncer constructs a Syncer over repo.
func NewSyncer(repo Repository, logger interfaces.Logger, opts ...SyncerOption) *Syncer {
	s := &Syncer{
		repo:   repo,
		logger: logging.Ensure(logger),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type cacheInvalidator interface {
	InvalidateCache(ctx context.Context) error
}

// Sync creates entries for new documents, updates entries whose checksum
// changed when UpdateExisting is set, and removes entries without a
// document when DeleteOrphaned is set. DryRun reports the same result
// without writing.
func (s *Syncer) Sync(ctx context.Context, docs []*interfaces.Document, opts SyncOptions) (*SyncResult, error) {
	existing, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: list entries: %w", err)
	}
	byPath := make(map[string]*Entry, len(existing))
	for _, entry := range existing {
		byPath[entry.Path] = entry
	}

	sorted := append([]*interfaces.Document(nil), docs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].FilePath < sorted[j].FilePath })

	result := &SyncResult{DryRun: opts.DryRun}
	seen := make(map[string]bool, len(sorted))
	now := s.now()

	for _, doc := range sorted {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if doc == nil || seen[doc.FilePath] {
			continue
		}
		seen[doc.FilePath] = true
		entry := EntryFromDocument(doc)
		current, ok := byPath[entry.Path]

		switch {
		case !ok:
			entry.CreatedAt = now
			entry.UpdatedAt = now
			if !opts.DryRun {
				if _, err := s.repo.Create(ctx, entry); err != nil {
					return nil, err
				}
			}
			result.Created = append(result.Created, entry.Path)
		case current.Checksum == entry.Checksum || !opts.UpdateExisting:
			result.Skipped = append(result.Skipped, entry.Path)
		default:
			entry.ID = current.ID
			entry.CreatedAt = current.CreatedAt
			entry.UpdatedAt = now
			if !opts.DryRun {
				if _, err := s.repo.Update(ctx, entry); err != nil {
					return nil, err
				}
			}
			result.Updated = append(result.Updated, entry.Path)
		}
		s.logger.Debug("catalog.entry", "doc_path", entry.Path, "checksum", entry.Checksum)
	}

	if opts.DeleteOrphaned {
		for _, entry := range existing {
			if seen[entry.Path] {
				continue
			}
			if !opts.DryRun {
				if err := s.repo.Delete(ctx, entry.ID); err != nil {
					return nil, fmt.Errorf("catalog: delete %s: %w", entry.Path, err)
				}
			}
			result.Deleted = append(result.Deleted, entry.Path)
		}
	}

	if inv, ok := s.repo.(cacheInvalidator); ok && !opts.DryRun {
		if err := inv.InvalidateCache(ctx); err != nil {
			s.logger.Warn("catalog.cache.invalidate_failed", "error", err)
		}
	}

	s.logger.Info("catalog.synced",
		"created", len(result.Created),
		"updated", len(result.Updated),
		"skipped", len(result.Skipped),
		"deleted", len(result.Deleted),
		"dry_run", opts.DryRun,
	)
	return result, nil
}
