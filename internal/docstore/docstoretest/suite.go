// Package docstoretest holds behavior checks shared by every docstore.Store implementation.
package docstoretest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/featherbook/featherbook/internal/docstore"
)

// Run exercises store against the docstore.Collection contract.
// Each subtest uses its own collection named after prefix.
func Run(t *testing.T, store docstore.Store, prefix string) {
	t.Helper()

	t.Run("InsertFindOne", func(t *testing.T) {
		ctx := context.Background()
		c := store.Collection(prefix + "_insert")

		require.NoError(t, c.Insert(ctx, docstore.Document{"id": "1", "name": "alpha"}))

		got, err := c.FindOne(ctx, docstore.ByID("1"))
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "alpha", got["name"])
		assert.NotContains(t, got, "_id")
	})

	t.Run("FindOneAbsent", func(t *testing.T) {
		ctx := context.Background()
		c := store.Collection(prefix + "_absent")

		got, err := c.FindOne(ctx, docstore.ByID("missing"))
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("FindByField", func(t *testing.T) {
		ctx := context.Background()
		c := store.Collection(prefix + "_find")

		require.NoError(t, c.Insert(ctx, docstore.Document{"id": "1", "owner": "a"}))
		require.NoError(t, c.Insert(ctx, docstore.Document{"id": "2", "owner": "b"}))
		require.NoError(t, c.Insert(ctx, docstore.Document{"id": "3", "owner": "a"}))

		docs, err := c.Find(ctx, docstore.Filter{"owner": "a"})
		require.NoError(t, err)
		assert.Len(t, docs, 2)

		all, err := c.Find(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, all, 3)

		n, err := c.Count(ctx, docstore.Filter{"owner": "b"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("ContainsFold", func(t *testing.T) {
		ctx := context.Background()
		c := store.Collection(prefix + "_search")

		require.NoError(t, c.Insert(ctx, docstore.Document{"id": "1", "title": "Weekly Report"}))
		require.NoError(t, c.Insert(ctx, docstore.Document{"id": "2", "title": "notes on REPORTING"}))
		require.NoError(t, c.Insert(ctx, docstore.Document{"id": "3", "title": "Groceries"}))
		require.NoError(t, c.Insert(ctx, docstore.Document{"id": "4", "title": "a.b(c)"}))

		docs, err := c.Find(ctx, docstore.Filter{"title": docstore.ContainsFold{Term: "report"}})
		require.NoError(t, err)
		assert.Len(t, docs, 2)

		// Regex metacharacters are matched literally.
		docs, err = c.Find(ctx, docstore.Filter{"title": docstore.ContainsFold{Term: ".b("}})
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "4", docs[0]["id"])
	})

	t.Run("UpdateOne", func(t *testing.T) {
		ctx := context.Background()
		c := store.Collection(prefix + "_update")

		require.NoError(t, c.Insert(ctx, docstore.Document{"id": "1", "content": "old", "keep": true}))

		matched, err := c.UpdateOne(ctx, docstore.ByID("1"), docstore.Document{"content": "new"})
		require.NoError(t, err)
		assert.True(t, matched)

		got, err := c.FindOne(ctx, docstore.ByID("1"))
		require.NoError(t, err)
		assert.Equal(t, "new", got["content"])
		assert.Equal(t, true, got["keep"])

		matched, err = c.UpdateOne(ctx, docstore.ByID("missing"), docstore.Document{"content": "x"})
		require.NoError(t, err)
		assert.False(t, matched)
	})

	t.Run("Delete", func(t *testing.T) {
		ctx := context.Background()
		c := store.Collection(prefix + "_delete")

		for _, id := range []string{"1", "2", "3"} {
			require.NoError(t, c.Insert(ctx, docstore.Document{"id": id, "group": "g"}))
		}

		deleted, err := c.DeleteOne(ctx, docstore.ByID("1"))
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = c.DeleteOne(ctx, docstore.ByID("1"))
		require.NoError(t, err)
		assert.False(t, deleted)

		n, err := c.DeleteMany(ctx, docstore.Filter{"group": "g"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		count, err := c.Count(ctx, nil)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("UniqueIndex", func(t *testing.T) {
		ctx := context.Background()
		c := store.Collection(prefix + "_unique")

		require.NoError(t, c.CreateUniqueIndex(ctx, "email"))
		require.NoError(t, c.Insert(ctx, docstore.Document{"id": "1", "email": "a@example.com"}))

		err := c.Insert(ctx, docstore.Document{"id": "2", "email": "a@example.com"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, docstore.ErrDuplicateKey), "got %v", err)

		require.NoError(t, c.Insert(ctx, docstore.Document{"id": "3", "email": "b@example.com"}))
		_, err = c.UpdateOne(ctx, docstore.ByID("3"), docstore.Document{"email": "a@example.com"})
		assert.ErrorIs(t, err, docstore.ErrDuplicateKey)
	})

	t.Run("NestedValues", func(t *testing.T) {
		ctx := context.Background()
		c := store.Collection(prefix + "_nested")

		require.NoError(t, c.Insert(ctx, docstore.Document{
			"id":   "1",
			"tags": []any{"x", "y"},
			"meta": docstore.Document{"name": "file.pdf"},
		}))

		got, err := c.FindOne(ctx, docstore.ByID("1"))
		require.NoError(t, err)
		assert.Equal(t, []any{"x", "y"}, got["tags"])
		meta, ok := got["meta"].(docstore.Document)
		require.True(t, ok, "nested value has type %T", got["meta"])
		assert.Equal(t, "file.pdf", meta["name"])
	})
}
