// Package mongo implements docstore.Store on MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/featherbook/featherbook/internal/docstore"
)

// Config holds connection settings.
type Config struct {
	URI                    string
	Database               string
	MaxPoolSize            uint64
	MinPoolSize            uint64
	MaxIdleTime            time.Duration
	ServerSelectionTimeout time.Duration
}

// Store is a docstore.Store backed by a MongoDB database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// New connects to MongoDB and verifies the connection with a ping.
func New(ctx context.Context, cfg Config) (*Store, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize).
		SetMaxConnIdleTime(cfg.MaxIdleTime).
		SetServerSelectionTimeout(cfg.ServerSelectionTimeout)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return &Store{client: client, db: client.Database(cfg.Database)}, nil
}

// Collection returns a handle on the named collection.
func (s *Store) Collection(name string) docstore.Collection {
	return &Collection{coll: s.db.Collection(name)}
}

// Ping checks MongoDB connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Collection adapts a mongo.Collection to docstore.Collection.
type Collection struct {
	coll *mongo.Collection
}

// Insert stores doc.
func (c *Collection) Insert(ctx context.Context, doc docstore.Document) error {
	if _, err := c.coll.InsertOne(ctx, bson.M(doc)); err != nil {
		return wrapWriteError("insert into "+c.coll.Name(), err)
	}
	return nil
}

// FindOne returns the first match or nil.
func (c *Collection) FindOne(ctx context.Context, filter docstore.Filter) (docstore.Document, error) {
	var raw bson.M
	err := c.coll.FindOne(ctx, toBSON(filter)).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find in %s: %w", c.coll.Name(), err)
	}
	return fromBSON(raw), nil
}

// Find returns every match.
func (c *Collection) Find(ctx context.Context, filter docstore.Filter) ([]docstore.Document, error) {
	cursor, err := c.coll.Find(ctx, toBSON(filter))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", c.coll.Name(), err)
	}

	var raws []bson.M
	if err := cursor.All(ctx, &raws); err != nil {
		return nil, fmt.Errorf("failed to read %s cursor: %w", c.coll.Name(), err)
	}

	docs := make([]docstore.Document, 0, len(raws))
	for _, raw := range raws {
		docs = append(docs, fromBSON(raw))
	}
	return docs, nil
}

// UpdateOne applies patch with $set.
func (c *Collection) UpdateOne(ctx context.Context, filter docstore.Filter, patch docstore.Document) (bool, error) {
	res, err := c.coll.UpdateOne(ctx, toBSON(filter), bson.M{"$set": bson.M(patch)})
	if err != nil {
		return false, wrapWriteError("update "+c.coll.Name(), err)
	}
	return res.MatchedCount > 0, nil
}

// DeleteOne removes the first match.
func (c *Collection) DeleteOne(ctx context.Context, filter docstore.Filter) (bool, error) {
	res, err := c.coll.DeleteOne(ctx, toBSON(filter))
	if err != nil {
		return false, fmt.Errorf("failed to delete from %s: %w", c.coll.Name(), err)
	}
	return res.DeletedCount > 0, nil
}

// DeleteMany removes every match.
func (c *Collection) DeleteMany(ctx context.Context, filter docstore.Filter) (int64, error) {
	res, err := c.coll.DeleteMany(ctx, toBSON(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %s: %w", c.coll.Name(), err)
	}
	return res.DeletedCount, nil
}

// Count returns the number of matches.
func (c *Collection) Count(ctx context.Context, filter docstore.Filter) (int64, error) {
	n, err := c.coll.CountDocuments(ctx, toBSON(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", c.coll.Name(), err)
	}
	return n, nil
}

// CreateUniqueIndex creates an ascending unique index on field.
func (c *Collection) CreateUniqueIndex(ctx context.Context, field string) error {
	_, err := c.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: field, Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return wrapWriteError("create index on "+c.coll.Name()+"."+field, err)
	}
	return nil
}

func wrapWriteError(op string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("failed to %s: %w: %w", op, docstore.ErrDuplicateKey, err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// toBSON translates a docstore filter into a MongoDB query document.
func toBSON(filter docstore.Filter) bson.M {
	out := bson.M{}
	for field, v := range filter {
		if cf, ok := v.(docstore.ContainsFold); ok {
			out[field] = bson.M{"$regex": regexp.QuoteMeta(cf.Term), "$options": "i"}
			continue
		}
		out[field] = v
	}
	return out
}

// fromBSON converts a decoded document into plain Go values and drops the
// store-internal _id.
func fromBSON(raw bson.M) docstore.Document {
	doc := make(docstore.Document, len(raw))
	for k, v := range raw {
		if k == "_id" {
			continue
		}
		doc[k] = plain(v)
	}
	return doc
}

func plain(v any) any {
	switch x := v.(type) {
	case bson.M:
		return fromBSON(x)
	case bson.D:
		m := make(bson.M, len(x))
		for _, e := range x {
			m[e.Key] = e.Value
		}
		return fromBSON(m)
	case bson.A:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = plain(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = plain(e)
		}
		return out
	case map[string]any:
		return fromBSON(bson.M(x))
	default:
		return v
	}
}
