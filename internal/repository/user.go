package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/featherbook/featherbook/internal/codec"
	"github.com/featherbook/featherbook/internal/docstore"
	"github.com/featherbook/featherbook/internal/model"
)

// UserRepository stores user accounts. Username and email are unique once
// EnsureIndexes has run.
type UserRepository struct {
	coll docstore.Collection
	now  func() time.Time
}

// Create inserts u. A taken username or email fails with ErrDuplicateKey.
func (r *UserRepository) Create(ctx context.Context, u *model.User) (*model.User, error) {
	if err := r.coll.Insert(ctx, codec.EncodeUserRecord(u)); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

// Update replaces the stored user. Returns nil if it does not exist.
func (r *UserRepository) Update(ctx context.Context, u *model.User) (*model.User, error) {
	u.Touch(r.now())
	matched, err := r.coll.UpdateOne(ctx, docstore.ByID(u.ID), codec.EncodeUserRecord(u))
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if !matched {
		return nil, nil
	}
	return u, nil
}

// GetByID returns the user or nil.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.getBy(ctx, "id", id)
}

// GetByUsername returns the user or nil.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getBy(ctx, "username", username)
}

// GetByEmail returns the user or nil.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *UserRepository) getBy(ctx context.Context, field, value string) (*model.User, error) {
	u, err := findOne(ctx, r.coll, docstore.Filter{field: value}, codec.DecodeUser)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by %s: %w", field, err)
	}
	return u, nil
}

// ListAll returns every user.
func (r *UserRepository) ListAll(ctx context.Context) ([]*model.User, error) {
	out, err := findAll(ctx, r.coll, nil, codec.DecodeUser)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return out, nil
}

// UpdateLastLogin stamps last_login with the current time and reports
// whether the user exists.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string) (bool, error) {
	now := codec.FormatTime(r.now())
	matched, err := r.coll.UpdateOne(ctx, docstore.ByID(id), docstore.Document{
		"last_login": now,
		"updated_at": now,
	})
	if err != nil {
		return false, fmt.Errorf("failed to update last login: %w", err)
	}
	return matched, nil
}

// Delete removes the user and reports whether it existed.
func (r *UserRepository) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := r.coll.DeleteOne(ctx, docstore.ByID(id))
	if err != nil {
		return false, fmt.Errorf("failed to delete user: %w", err)
	}
	return deleted, nil
}

// Exists reports whether a user with id is stored.
func (r *UserRepository) Exists(ctx context.Context, id string) (bool, error) {
	ok, err := exists(ctx, r.coll, id)
	if err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return ok, nil
}

// Count returns the number of stored users.
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.Count(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}
