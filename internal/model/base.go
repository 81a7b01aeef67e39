// Package model defines domain entities for the application.
package model

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Base holds the identity and timestamps shared by every entity.
type Base struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewID returns a fresh unique entity identifier.
func NewID() string {
	return ulid.Make().String()
}

// Now returns the current instant in UTC with the monotonic reading stripped.
func Now() time.Time {
	return time.Now().UTC()
}

func newBase() Base {
	now := Now()
	return Base{
		ID:        NewID(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch refreshes UpdatedAt. Called by repositories right before a persisted mutation.
func (b *Base) Touch(now time.Time) {
	b.UpdatedAt = now.UTC()
}
