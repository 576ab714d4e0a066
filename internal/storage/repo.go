package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

const (
	// DefaultListLimit caps response size when the caller omits a limit.
	DefaultListLimit = 500
	// MaxListLimit is the server-enforced upper bound on one page.
	MaxListLimit = 1000

	idColumn = "id"
)

// ListOptions is the keyset-pagination contract: resume listing from
// AfterValue on AfterField, ascending, returning at most Limit entries.
type ListOptions struct {
	AfterField string
	AfterValue string
	Limit      int
}

// Repository implements generic create/read/update/delete plus keyset
// listing for one entity type. Entity-specific stores layer their own
// lookups on top; the pagination and merge logic lives here once.
//
// Updates are read-modify-write with no optimistic locking: two concurrent
// updates to the same id race at the store's isolation level and the last
// commit wins.
type Repository[T Entity, P Patch[T]] struct {
	store        Store[T]
	defaultField string
	sortable     map[string]string
}

// NewRepository builds a repository over store. sortable maps caller-facing
// field names to storage columns; any field outside it is rejected before
// the store is touched. defaultField is the natural key used when the
// caller names no sort field.
func NewRepository[T Entity, P Patch[T]](store Store[T], defaultField string, sortable map[string]string) *Repository[T, P] {
	return &Repository[T, P]{
		store:        store,
		defaultField: defaultField,
		sortable:     sortable,
	}
}

// GetByID fetches one entity or ErrNotFound.
func (r *Repository[T, P]) GetByID(ctx context.Context, id uuid.UUID) (T, error) {
	return r.store.Get(ctx, id)
}

// List returns at most opts.Limit entities ordered ascending by the resume
// field, starting at entries whose field value is >= opts.AfterValue. The
// primary id is always appended as a secondary sort key so the cursor stays
// stable when the resume field has duplicate values.
func (r *Repository[T, P]) List(ctx context.Context, opts ListOptions) ([]T, error) {
	field := opts.AfterField
	if field == "" {
		if opts.AfterValue != "" {
			return nil, ErrMissingAfterField
		}
		field = r.defaultField
	}

	column, ok := r.sortable[field]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsortableField, field)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	q := Query{OrderBy: []string{column}, Limit: limit}
	if column != idColumn {
		q.OrderBy = append(q.OrderBy, idColumn)
	}
	if opts.AfterValue != "" {
		q.Where = &Filter{Field: column, Value: opts.AfterValue}
	}
	return r.store.Select(ctx, q)
}

// Create persists entity and returns the stored row including generated id
// and defaults.
func (r *Repository[T, P]) Create(ctx context.Context, entity T) (T, error) {
	return r.store.Insert(ctx, entity)
}

// Update applies a partial merge: only fields present in patch overwrite the
// stored entity, everything else keeps its previous value. Returns the
// merged entity, or ErrNotFound when id does not exist.
func (r *Repository[T, P]) Update(ctx context.Context, id uuid.UUID, patch P) (T, error) {
	entity, err := r.store.Get(ctx, id)
	if err != nil {
		var zero T
		return zero, err
	}
	patch.Apply(&entity)
	return r.store.Save(ctx, entity)
}

// Delete removes the entity and returns it for caller confirmation. A second
// delete of the same id fails with ErrNotFound.
func (r *Repository[T, P]) Delete(ctx context.Context, id uuid.UUID) (T, error) {
	entity, err := r.store.Get(ctx, id)
	if err != nil {
		var zero T
		return zero, err
	}
	if err := r.store.Delete(ctx, id); err != nil {
		var zero T
		return zero, err
	}
	return entity, nil
}
