// Package docstore defines the document store abstraction used by repositories.
//
// A Store hands out named collections of schemaless documents. Interactions
// are single-document or single-collection; there are no transactions.
package docstore

import (
	"context"
	"errors"
)

// ErrDuplicateKey indicates a write violated a unique index.
var ErrDuplicateKey = errors.New("duplicate key")

// Document is a stored record. Values are strings, bools, numbers, nil,
// nested Documents or slices of those.
type Document map[string]any

// Filter selects documents. Each entry is an equality match on a top-level
// field unless the value is a ContainsFold.
type Filter map[string]any

// ContainsFold matches string fields containing Term, ignoring case.
type ContainsFold struct {
	Term string
}

// Store is a handle on a document database.
type Store interface {
	Collection(name string) Collection
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Collection is a set of documents sharing a name.
type Collection interface {
	// Insert stores doc. It fails with ErrDuplicateKey if a unique index is violated.
	Insert(ctx context.Context, doc Document) error
	// FindOne returns the first match, or nil if nothing matches.
	FindOne(ctx context.Context, filter Filter) (Document, error)
	Find(ctx context.Context, filter Filter) ([]Document, error)
	// UpdateOne sets the fields of patch on the first match and reports
	// whether a document matched.
	UpdateOne(ctx context.Context, filter Filter, patch Document) (bool, error)
	DeleteOne(ctx context.Context, filter Filter) (bool, error)
	DeleteMany(ctx context.Context, filter Filter) (int64, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	CreateUniqueIndex(ctx context.Context, field string) error
}

// ByID returns a filter matching the application-assigned id.
func ByID(id string) Filter {
	return Filter{"id": id}
}
