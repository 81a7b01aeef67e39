package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/featherbook/featherbook/internal/codec"
	"github.com/featherbook/featherbook/internal/docstore"
	"github.com/featherbook/featherbook/internal/model"
)

// NoteRepository stores notes and cascades to their attachments.
//
// Writes are not atomic across collections. Create writes the note before
// its attachments and Delete removes attachments before the note, so a
// partial failure can leave a note without attachments but never an
// attachment without its note.
type NoteRepository struct {
	coll        docstore.Collection
	attachments *AttachmentRepository
	now         func() time.Time
}

// Create inserts n and then each attachment with its back-reference set to n.ID.
func (r *NoteRepository) Create(ctx context.Context, n *model.Note) (*model.Note, error) {
	for _, a := range n.Attachments {
		a.NoteID = n.ID
	}

	if err := r.coll.Insert(ctx, codec.EncodeNoteRecord(n)); err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	for _, a := range n.Attachments {
		if _, err := r.attachments.Create(ctx, a); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// Update replaces the stored note and reconciles its attachments: new ones
// are inserted, changed ones rewritten and ones no longer present deleted.
// Returns nil if the note does not exist.
func (r *NoteRepository) Update(ctx context.Context, n *model.Note) (*model.Note, error) {
	n.Touch(r.now())
	for _, a := range n.Attachments {
		a.NoteID = n.ID
	}

	matched, err := r.coll.UpdateOne(ctx, docstore.ByID(n.ID), codec.EncodeNoteRecord(n))
	if err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}
	if !matched {
		return nil, nil
	}

	stored, err := r.attachments.ListByNote(ctx, n.ID)
	if err != nil {
		return nil, err
	}
	storedByID := make(map[string]*model.Attachment, len(stored))
	for _, a := range stored {
		storedByID[a.ID] = a
	}

	for _, a := range n.Attachments {
		prev, ok := storedByID[a.ID]
		delete(storedByID, a.ID)
		switch {
		case !ok:
			if _, err := r.attachments.Create(ctx, a); err != nil {
				return nil, err
			}
		case prev.URL != a.URL || prev.Type != a.Type:
			if _, err := r.attachments.Update(ctx, a); err != nil {
				return nil, err
			}
		}
	}

	for id := range storedByID {
		if _, err := r.attachments.Delete(ctx, id); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// GetByID returns the note with attachments loaded by back-reference, or nil.
func (r *NoteRepository) GetByID(ctx context.Context, id string) (*model.Note, error) {
	doc, err := r.coll.FindOne(ctx, docstore.ByID(id))
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	if doc == nil {
		return nil, nil
	}
	return r.hydrate(ctx, doc)
}

// ListAll returns every note, each hydrated as in GetByID.
func (r *NoteRepository) ListAll(ctx context.Context) ([]*model.Note, error) {
	docs, err := r.coll.Find(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	notes := make([]*model.Note, 0, len(docs))
	for _, doc := range docs {
		n, err := r.hydrate(ctx, doc)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, nil
}

// Delete removes every attachment of the note and then the note itself.
// Reports whether the note existed.
func (r *NoteRepository) Delete(ctx context.Context, id string) (bool, error) {
	if _, err := r.attachments.DeleteByNote(ctx, id); err != nil {
		return false, err
	}

	deleted, err := r.coll.DeleteOne(ctx, docstore.ByID(id))
	if err != nil {
		return false, fmt.Errorf("failed to delete note: %w", err)
	}
	return deleted, nil
}

// Exists reports whether a note with id is stored.
func (r *NoteRepository) Exists(ctx context.Context, id string) (bool, error) {
	ok, err := exists(ctx, r.coll, id)
	if err != nil {
		return false, fmt.Errorf("failed to check note: %w", err)
	}
	return ok, nil
}

// Count returns the number of stored notes.
func (r *NoteRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.Count(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count notes: %w", err)
	}
	return n, nil
}

// hydrate decodes a stored note and loads its attachments from the
// attachments collection. Recorded ids only determine order.
func (r *NoteRepository) hydrate(ctx context.Context, doc docstore.Document) (*model.Note, error) {
	n, err := codec.DecodeNote(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to decode note: %w", err)
	}

	attachments, err := r.attachments.ListByNote(ctx, n.ID)
	if err != nil {
		return nil, err
	}
	n.Attachments = orderAttachments(attachments, codec.NoteAttachmentIDs(doc))
	return n, nil
}

// orderAttachments sorts attachments by their position in ids. Attachments
// missing from ids keep their relative order at the end.
func orderAttachments(attachments []*model.Attachment, ids []string) []*model.Attachment {
	pos := make(map[string]int, len(ids))
	for i, id := range ids {
		pos[id] = i
	}

	ordered := make([]*model.Attachment, 0, len(attachments))
	var rest []*model.Attachment
	slots := make([]*model.Attachment, len(ids))
	for _, a := range attachments {
		if i, ok := pos[a.ID]; ok && slots[i] == nil {
			slots[i] = a
			continue
		}
		rest = append(rest, a)
	}
	for _, a := range slots {
		if a != nil {
			ordered = append(ordered, a)
		}
	}
	return append(ordered, rest...)
}
