package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/featherbook/featherbook/internal/codec"
	"github.com/featherbook/featherbook/internal/docstore"
	"github.com/featherbook/featherbook/internal/model"
)

// AttachmentRepository stores attachments. Callers normally reach
// attachments through NoteRepository.
type AttachmentRepository struct {
	coll docstore.Collection
	now  func() time.Time
}

// Create inserts a.
func (r *AttachmentRepository) Create(ctx context.Context, a *model.Attachment) (*model.Attachment, error) {
	if err := r.coll.Insert(ctx, codec.EncodeAttachment(a)); err != nil {
		return nil, fmt.Errorf("failed to create attachment: %w", err)
	}
	return a, nil
}

// Update replaces the stored attachment. Returns nil if it does not exist.
func (r *AttachmentRepository) Update(ctx context.Context, a *model.Attachment) (*model.Attachment, error) {
	a.Touch(r.now())
	matched, err := r.coll.UpdateOne(ctx, docstore.ByID(a.ID), codec.EncodeAttachment(a))
	if err != nil {
		return nil, fmt.Errorf("failed to update attachment: %w", err)
	}
	if !matched {
		return nil, nil
	}
	return a, nil
}

// GetByID returns the attachment or nil.
func (r *AttachmentRepository) GetByID(ctx context.Context, id string) (*model.Attachment, error) {
	a, err := findOne(ctx, r.coll, docstore.ByID(id), codec.DecodeAttachment)
	if err != nil {
		return nil, fmt.Errorf("failed to get attachment: %w", err)
	}
	return a, nil
}

// ListByNote returns every attachment whose back-reference is noteID.
func (r *AttachmentRepository) ListByNote(ctx context.Context, noteID string) ([]*model.Attachment, error) {
	out, err := findAll(ctx, r.coll, docstore.Filter{"note_id": noteID}, codec.DecodeAttachment)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	return out, nil
}

// Delete removes the attachment and reports whether it existed.
func (r *AttachmentRepository) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := r.coll.DeleteOne(ctx, docstore.ByID(id))
	if err != nil {
		return false, fmt.Errorf("failed to delete attachment: %w", err)
	}
	return deleted, nil
}

// DeleteByNote removes every attachment owned by noteID.
func (r *AttachmentRepository) DeleteByNote(ctx context.Context, noteID string) (int64, error) {
	n, err := r.coll.DeleteMany(ctx, docstore.Filter{"note_id": noteID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete attachments of note: %w", err)
	}
	return n, nil
}

// Exists reports whether an attachment with id is stored.
func (r *AttachmentRepository) Exists(ctx context.Context, id string) (bool, error) {
	ok, err := exists(ctx, r.coll, id)
	if err != nil {
		return false, fmt.Errorf("failed to check attachment: %w", err)
	}
	return ok, nil
}

// Count returns the number of stored attachments.
func (r *AttachmentRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.Count(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count attachments: %w", err)
	}
	return n, nil
}
