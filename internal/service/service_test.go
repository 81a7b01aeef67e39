package service

import (
	"context"
	"testing"
	"time"

	"github.com/featherbook/featherbook/internal/auth"
	"github.com/featherbook/featherbook/internal/docstore/memory"
	"github.com/featherbook/featherbook/internal/metrics"
	"github.com/featherbook/featherbook/internal/repository"
)

// cheapHasher keeps argon2id but with minimal cost so tests stay fast.
var cheapHasher = auth.NewPasswordHasher(auth.Argon2Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32, SaltLen: 16})

const testSecret = "test-secret-key-that-is-32-bytes!"

type testEnv struct {
	repo      *repository.Repository
	metrics   *metrics.InMemoryRecorder
	auth      *AuthService
	notes     *NoteService
	syntheses *SynthesisService
	tokens    *auth.TokenManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo := repository.New(memory.New())
	if err := repo.EnsureIndexes(context.Background()); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}

	tokens, err := auth.NewTokenManager([]byte(testSecret), auth.WithTTL(time.Hour))
	if err != nil {
		t.Fatalf("NewTokenManager failed: %v", err)
	}

	recorder := metrics.NewInMemory()
	return &testEnv{
		repo:      repo,
		metrics:   recorder,
		auth:      NewAuthService(repo, tokens, cheapHasher, recorder),
		notes:     NewNoteService(repo, recorder),
		syntheses: NewSynthesisService(repo, recorder),
		tokens:    tokens,
	}
}

func strPtr(s string) *string { return &s }
