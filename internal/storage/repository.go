// Package storage defines the repository abstraction: generic CRUD with
// keyset-paginated listing over an injected Store collaborator.
package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/daxreyes/bushfire-beacon/internal/domain/model"
)

var (
	// ErrNotFound means the lookup/update/delete target does not exist.
	ErrNotFound = errors.New("not found")
	// ErrMissingAfterField means an after_value was supplied without naming
	// the field it resumes from.
	ErrMissingAfterField = errors.New("after_value requires after_field")
	// ErrUnsortableField means the requested sort field is outside the
	// entity's allow-list.
	ErrUnsortableField = errors.New("field is not sortable")
)

// Entity is any record with a primary id.
type Entity interface {
	EntityID() uuid.UUID
}

// Patch applies a partial-merge update to an entity in place.
type Patch[T any] interface {
	Apply(*T)
}

// Filter restricts a selection to rows where Field >= Value. Field is a
// storage column name already validated against the sortable allow-list.
type Filter struct {
	Field string
	Value string
}

// Query describes one page of an ascending keyset selection.
type Query struct {
	OrderBy []string
	Where   *Filter
	Limit   int
}

// Store is the record-store collaborator a Repository delegates to. The
// store owns its own concurrency discipline; the Repository holds no
// cross-call state.
type Store[T Entity] interface {
	Get(ctx context.Context, id uuid.UUID) (T, error)
	Select(ctx context.Context, q Query) ([]T, error)
	Insert(ctx context.Context, entity T) (T, error)
	Save(ctx context.Context, entity T) (T, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserStore adds the user-specific lookups on top of the generic store.
type UserStore interface {
	Store[model.User]
	GetByEmail(ctx context.Context, email string) (model.User, error)
}

// FacilityStore adds the facility-specific lookups.
type FacilityStore interface {
	Store[model.Facility]
	GetByCode(ctx context.Context, code string) (model.Facility, error)
	GetByName(ctx context.Context, name string) (model.Facility, error)
}

// ReportStore persists capacity reports.
type ReportStore interface {
	Store[model.Report]
}
