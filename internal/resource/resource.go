// Package resource defines the table-oriented data-access contract the rest
// of the application is written against. A resource is a named remote
// collection ("events", "news", ...) exposing CRUD operations, basic
// equality filters, ordering and realtime insert notifications. Any backend
// satisfying this interface is substitutable; the production implementation
// is Firestore-backed, tests use the in-memory one.
package resource

import (
	"context"
	"errors"
)

// Row is a single record as the backend returns it. The "id" field is
// always present on rows read back from a client.
type Row map[string]any

// ID returns the row's id field, or "" when absent.
func (r Row) ID() string {
	id, _ := r["id"].(string)
	return id
}

// Filter is an equality match on a single field.
type Filter struct {
	Field string
	Value any
}

// Order is a single-column sort directive.
type Order struct {
	Field string
	Desc  bool
}

// Eq builds an equality filter.
func Eq(field string, value any) Filter {
	return Filter{Field: field, Value: value}
}

var (
	ErrNotFound = errors.New("resource: row not found")
)

// Client is the generic resource-access contract.
type Client interface {
	// Select reads rows matching all filters, applying the given orderings.
	Select(ctx context.Context, resource string, filters []Filter, orders ...Order) ([]Row, error)

	// Insert creates a row and returns it with its assigned id.
	Insert(ctx context.Context, resource string, row Row) (Row, error)

	// Update patches the row with the given id and returns the updated row.
	Update(ctx context.Context, resource string, id string, patch Row) (Row, error)

	// Delete removes the row with the given id.
	Delete(ctx context.Context, resource string, id string) error

	// DeleteWhere removes every row matching all filters.
	DeleteWhere(ctx context.Context, resource string, filters ...Filter) error

	// Upsert inserts the row, or overwrites the existing row whose values
	// match the given conflict-key fields.
	Upsert(ctx context.Context, resource string, row Row, conflictKeys ...string) (Row, error)

	// Subscribe invokes onInsert for every row newly added to the resource
	// that matches all filters. The returned func stops the subscription.
	Subscribe(ctx context.Context, resource string, filters []Filter, onInsert func(Row)) (func(), error)
}

// Matches reports whether the row satisfies every filter.
func Matches(row Row, filters []Filter) bool {
	for _, f := range filters {
		if row[f.Field] != f.Value {
			return false
		}
	}
	return true
}
