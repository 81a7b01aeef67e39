// Package testutil holds helpers shared by integration tests: containers for
// the external stores and factories for domain entities.
package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	tcmongo "github.com/testcontainers/testcontainers-go/modules/mongodb"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/featherbook/featherbook/internal/docstore/mongo"
	"github.com/featherbook/featherbook/internal/model"
)

// Container images used by integration tests.
const (
	MongoImage = "mongo:7"
	RedisImage = "redis:7-alpine"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

// StartMongo runs a MongoDB container and returns a connected store on a
// fresh database. The test is skipped when Docker is unavailable.
func StartMongo(t testing.TB) *mongo.Store {
	t.Helper()
	ctx := context.Background()

	container, err := tcmongo.Run(ctx, MongoImage)
	testcontainers.CleanupContainer(t, container)
	if err != nil {
		t.Skipf("mongo container unavailable: %v", err)
	}

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("mongo connection string: %v", err)
	}

	store, err := mongo.New(ctx, mongo.Config{
		URI:                    uri,
		Database:               UniqueID("feather_book_test"),
		MaxPoolSize:            10,
		MinPoolSize:            1,
		MaxIdleTime:            30 * time.Second,
		ServerSelectionTimeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("connect mongo: %v", err)
	}
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	return store
}

// StartRedis runs a Redis container and returns a connected client.
// The test is skipped when Docker is unavailable.
func StartRedis(t testing.TB) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, RedisImage)
	testcontainers.CleanupContainer(t, container)
	if err != nil {
		t.Skipf("redis container unavailable: %v", err)
	}

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("redis connection string: %v", err)
	}
	opts, err := redis.ParseURL(uri)
	if err != nil {
		t.Fatalf("parse redis url: %v", err)
	}

	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("ping redis: %v", err)
	}

	return client
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestNote creates a note with one attachment per url, alternating Audio
// and Document types.
func NewTestNote(t testing.TB, content string, urls ...string) *model.Note {
	t.Helper()
	note := model.NewNote(content)
	for i, url := range urls {
		typ := model.AttachmentAudio
		if i%2 == 1 {
			typ = model.AttachmentDocument
		}
		a, err := model.NewAttachment(url, string(typ))
		if err != nil {
			t.Fatalf("new attachment: %v", err)
		}
		note.AddAttachment(a)
	}
	return note
}

// NewTestUser creates an active user whose email is derived from username.
func NewTestUser(t testing.TB, username string) *model.User {
	t.Helper()
	return model.NewUser(username, username+"@example.com", model.RoleUser)
}

// NewTestSynthesis creates a generated synthesis linked to noteID.
func NewTestSynthesis(t testing.TB, noteID, title string) *model.Synthesis {
	t.Helper()
	s := model.NewSynthesis("https://files.example.com/"+UniqueID("synthesis")+".pdf", true)
	s.LinkNote(noteID)
	s.SetTitle(title)
	return s
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}
