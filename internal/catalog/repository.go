package catalog

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	cache "github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository persists catalog entries.
type Repository interface {
	List(ctx context.Context) ([]*Entry, error)
	GetByPath(ctx context.Context, path string) (*Entry, error)
	Create(ctx context.Context, entry *Entry) (*Entry, error)
	Update(ctx context.Context, entry *Entry) (*Entry, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// NotFoundError is returned when an entry lookup misses.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// NewEntryRepository builds the generic repository for catalog entries,
// identified by path.
func NewEntryRepository(db *bun.DB) repository.Repository[*Entry] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Entry]{
		NewRecord: func() *Entry { return &Entry{} },
		GetID: func(e *Entry) uuid.UUID {
			return e.ID
		},
		SetID: func(e *Entry, id uuid.UUID) {
			e.ID = id
		},
		GetIdentifier: func() string {
			return "path"
		},
		GetIdentifierValue: func(e *Entry) string {
			return e.Path
		},
	})
}

// BunRepository implements Repository with optional caching.
type BunRepository struct {
	repo         repository.Repository[*Entry]
	cacheService cache.CacheService
}

// entryNamespace matches the key namespace repositorycache derives from the
// Entry type name.
const entryNamespace = "entry"

var _ Repository = (*BunRepository)(nil)

// NewBunRepository creates an entry repository without caching.
func NewBunRepository(db *bun.DB) *BunRepository {
	return NewBunRepositoryWithCache(db, nil, nil)
}

// NewBunRepositoryWithCache creates an entry repository backed by the cache
// service when both the service and serializer are set.
func NewBunRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunRepository {
	base := NewEntryRepository(db)
	var svc cache.CacheService
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
		svc = cacheService
	}
	return &BunRepository{repo: base, cacheService: svc}
}

func (r *BunRepository) List(ctx context.Context) ([]*Entry, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.path ASC")
		}),
	)
	return records, err
}

func (r *BunRepository) GetByPath(ctx context.Context, path string) (*Entry, error) {
	record, err := r.repo.GetByIdentifier(ctx, path)
	if err != nil {
		return nil, mapRepositoryError(err, "catalog_entry", path)
	}
	return record, nil
}

func (r *BunRepository) Create(ctx context.Context, entry *Entry) (*Entry, error) {
	record, err := r.repo.Create(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("create catalog entry %s: %w", entry.Path, err)
	}
	return record, nil
}

func (r *BunRepository) Update(ctx context.Context, entry *Entry) (*Entry, error) {
	record, err := r.repo.Update(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("update catalog entry %s: %w", entry.Path, err)
	}
	return record, nil
}

func (r *BunRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.repo.Delete(ctx, &Entry{ID: id})
}

// InvalidateCache drops every cached entry lookup.
func (r *BunRepository) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, entryNamespace+cache.KeySeparator)
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}
