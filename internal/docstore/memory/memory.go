// Package memory implements docstore.Store in process memory.
// Data does not survive a restart.
package memory

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/featherbook/featherbook/internal/docstore"
)

// Store is a goroutine-safe in-memory document store.
type Store struct {
	mu          sync.Mutex
	collections map[string]*Collection
}

// New creates an empty Store.
func New() *Store {
	return &Store{collections: make(map[string]*Collection)}
}

// Collection returns the named collection, creating it on first use.
func (s *Store) Collection(name string) docstore.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		c = &Collection{name: name, unique: make(map[string]struct{})}
		s.collections[name] = c
	}
	return c
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op.
func (s *Store) Close(ctx context.Context) error {
	return nil
}

// Collection holds documents in insertion order.
type Collection struct {
	name   string
	mu     sync.RWMutex
	docs   []docstore.Document
	unique map[string]struct{}
}

// Insert stores a copy of doc.
func (c *Collection) Insert(ctx context.Context, doc docstore.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkUnique(doc, -1); err != nil {
		return err
	}
	c.docs = append(c.docs, copyDocument(doc))
	return nil
}

// FindOne returns a copy of the first match.
func (c *Collection) FindOne(ctx context.Context, filter docstore.Filter) (docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, doc := range c.docs {
		if matches(doc, filter) {
			return copyDocument(doc), nil
		}
	}
	return nil, nil
}

// Find returns copies of every match in insertion order.
func (c *Collection) Find(ctx context.Context, filter docstore.Filter) ([]docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]docstore.Document, 0)
	for _, doc := range c.docs {
		if matches(doc, filter) {
			out = append(out, copyDocument(doc))
		}
	}
	return out, nil
}

// UpdateOne merges patch into the first match.
func (c *Collection) UpdateOne(ctx context.Context, filter docstore.Filter, patch docstore.Document) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i, doc := range c.docs {
		if !matches(doc, filter) {
			continue
		}
		updated := copyDocument(doc)
		for k, v := range patch {
			updated[k] = copyValue(v)
		}
		if err := c.checkUnique(updated, i); err != nil {
			return false, err
		}
		c.docs[i] = updated
		return true, nil
	}
	return false, nil
}

// DeleteOne removes the first match.
func (c *Collection) DeleteOne(ctx context.Context, filter docstore.Filter) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i, doc := range c.docs {
		if matches(doc, filter) {
			c.docs = append(c.docs[:i], c.docs[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// DeleteMany removes every match and returns how many were removed.
func (c *Collection) DeleteMany(ctx context.Context, filter docstore.Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.docs[:0]
	var removed int64
	for _, doc := range c.docs {
		if matches(doc, filter) {
			removed++
			continue
		}
		kept = append(kept, doc)
	}
	c.docs = kept
	return removed, nil
}

// Count returns the number of matches.
func (c *Collection) Count(ctx context.Context, filter docstore.Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var n int64
	for _, doc := range c.docs {
		if matches(doc, filter) {
			n++
		}
	}
	return n, nil
}

// CreateUniqueIndex enforces uniqueness of field on later writes.
// It fails if existing documents already collide.
func (c *Collection) CreateUniqueIndex(ctx context.Context, field string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.docs {
		for j := i + 1; j < len(c.docs); j++ {
			if reflect.DeepEqual(c.docs[i][field], c.docs[j][field]) {
				return fmt.Errorf("%w: collection %s index on %s", docstore.ErrDuplicateKey, c.name, field)
			}
		}
	}
	c.unique[field] = struct{}{}
	return nil
}

// checkUnique reports a collision between doc and any stored document
// other than the one at position skip.
func (c *Collection) checkUnique(doc docstore.Document, skip int) error {
	for field := range c.unique {
		for i, other := range c.docs {
			if i == skip {
				continue
			}
			if reflect.DeepEqual(doc[field], other[field]) {
				return fmt.Errorf("%w: collection %s field %s", docstore.ErrDuplicateKey, c.name, field)
			}
		}
	}
	return nil
}

func matches(doc docstore.Document, filter docstore.Filter) bool {
	for field, want := range filter {
		got := doc[field]
		if cf, ok := want.(docstore.ContainsFold); ok {
			s, isString := got.(string)
			if !isString || !strings.Contains(strings.ToLower(s), strings.ToLower(cf.Term)) {
				return false
			}
			continue
		}
		if !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

func copyDocument(doc docstore.Document) docstore.Document {
	if doc == nil {
		return nil
	}
	out := make(docstore.Document, len(doc))
	for k, v := range doc {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch x := v.(type) {
	case docstore.Document:
		return copyDocument(x)
	case map[string]any:
		return map[string]any(copyDocument(x))
	case []docstore.Document:
		out := make([]docstore.Document, len(x))
		for i, d := range x {
			out[i] = copyDocument(d)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = copyValue(e)
		}
		return out
	case []string:
		return append([]string(nil), x...)
	default:
		return v
	}
}
