// Package repository provides persistence for domain entities on a document store.
//
// Lookups of an id that does not exist return a nil entity and a nil error.
// Store failures are returned wrapped and are never retried.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/featherbook/featherbook/internal/docstore"
	"github.com/featherbook/featherbook/internal/model"
)

// Collection names.
const (
	NotesCollection       = "notes"
	AttachmentsCollection = "attachments"
	SynthesesCollection   = "syntheses"
	UsersCollection       = "users"
)

// ErrDuplicateKey is returned when a write violates a unique index.
var ErrDuplicateKey = docstore.ErrDuplicateKey

// Option configures a Repository.
type Option func(*Repository)

// WithClock overrides the clock used to stamp updated_at.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		r.now = now
	}
}

// Repository groups the per-entity repositories over one store.
type Repository struct {
	store docstore.Store
	now   func() time.Time

	Notes       *NoteRepository
	Attachments *AttachmentRepository
	Syntheses   *SynthesisRepository
	Users       *UserRepository
}

// New creates a Repository on store.
func New(store docstore.Store, opts ...Option) *Repository {
	r := &Repository{store: store, now: model.Now}
	for _, opt := range opts {
		opt(r)
	}

	r.Attachments = &AttachmentRepository{coll: store.Collection(AttachmentsCollection), now: r.now}
	r.Notes = &NoteRepository{coll: store.Collection(NotesCollection), attachments: r.Attachments, now: r.now}
	r.Syntheses = &SynthesisRepository{coll: store.Collection(SynthesesCollection), now: r.now}
	r.Users = &UserRepository{coll: store.Collection(UsersCollection), now: r.now}
	return r
}

// EnsureIndexes creates the unique indexes every collection relies on.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	indexes := []struct {
		collection string
		field      string
	}{
		{NotesCollection, "id"},
		{AttachmentsCollection, "id"},
		{SynthesesCollection, "id"},
		{UsersCollection, "id"},
		{UsersCollection, "username"},
		{UsersCollection, "email"},
	}

	for _, idx := range indexes {
		if err := r.store.Collection(idx.collection).CreateUniqueIndex(ctx, idx.field); err != nil {
			return fmt.Errorf("failed to ensure index %s.%s: %w", idx.collection, idx.field, err)
		}
	}
	return nil
}

// Ping checks store connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.store.Ping(ctx)
}

// findOne decodes the first document matching filter, or returns nil.
func findOne[T any](ctx context.Context, c docstore.Collection, filter docstore.Filter, decode func(docstore.Document) (*T, error)) (*T, error) {
	doc, err := c.FindOne(ctx, filter)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	return decode(doc)
}

// findAll decodes every document matching filter.
func findAll[T any](ctx context.Context, c docstore.Collection, filter docstore.Filter, decode func(docstore.Document) (*T, error)) ([]*T, error) {
	docs, err := c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := make([]*T, 0, len(docs))
	for _, doc := range docs {
		v, err := decode(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func exists(ctx context.Context, c docstore.Collection, id string) (bool, error) {
	n, err := c.Count(ctx, docstore.ByID(id))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
