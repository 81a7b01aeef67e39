package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/featherbook/featherbook/internal/codec"
	"github.com/featherbook/featherbook/internal/docstore"
	"github.com/featherbook/featherbook/internal/model"
)

// SynthesisRepository stores syntheses. The note link is a soft reference
// and is not checked.
type SynthesisRepository struct {
	coll docstore.Collection
	now  func() time.Time
}

// Create inserts s.
func (r *SynthesisRepository) Create(ctx context.Context, s *model.Synthesis) (*model.Synthesis, error) {
	if err := r.coll.Insert(ctx, codec.EncodeSynthesis(s)); err != nil {
		return nil, fmt.Errorf("failed to create synthesis: %w", err)
	}
	return s, nil
}

// Update replaces the stored synthesis. Returns nil if it does not exist.
func (r *SynthesisRepository) Update(ctx context.Context, s *model.Synthesis) (*model.Synthesis, error) {
	s.Touch(r.now())
	matched, err := r.coll.UpdateOne(ctx, docstore.ByID(s.ID), codec.EncodeSynthesis(s))
	if err != nil {
		return nil, fmt.Errorf("failed to update synthesis: %w", err)
	}
	if !matched {
		return nil, nil
	}
	return s, nil
}

// GetByID returns the synthesis or nil.
func (r *SynthesisRepository) GetByID(ctx context.Context, id string) (*model.Synthesis, error) {
	s, err := findOne(ctx, r.coll, docstore.ByID(id), codec.DecodeSynthesis)
	if err != nil {
		return nil, fmt.Errorf("failed to get synthesis: %w", err)
	}
	return s, nil
}

// ListAll returns every synthesis.
func (r *SynthesisRepository) ListAll(ctx context.Context) ([]*model.Synthesis, error) {
	out, err := findAll(ctx, r.coll, nil, codec.DecodeSynthesis)
	if err != nil {
		return nil, fmt.Errorf("failed to list syntheses: %w", err)
	}
	return out, nil
}

// ListByNote returns the syntheses linked to noteID.
func (r *SynthesisRepository) ListByNote(ctx context.Context, noteID string) ([]*model.Synthesis, error) {
	out, err := findAll(ctx, r.coll, docstore.Filter{"note_id": noteID}, codec.DecodeSynthesis)
	if err != nil {
		return nil, fmt.Errorf("failed to list syntheses of note: %w", err)
	}
	return out, nil
}

// SearchByTitle returns syntheses whose title contains term, ignoring case.
func (r *SynthesisRepository) SearchByTitle(ctx context.Context, term string) ([]*model.Synthesis, error) {
	out, err := findAll(ctx, r.coll, docstore.Filter{"title": docstore.ContainsFold{Term: term}}, codec.DecodeSynthesis)
	if err != nil {
		return nil, fmt.Errorf("failed to search syntheses: %w", err)
	}
	return out, nil
}

// Delete removes the synthesis and reports whether it existed.
func (r *SynthesisRepository) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := r.coll.DeleteOne(ctx, docstore.ByID(id))
	if err != nil {
		return false, fmt.Errorf("failed to delete synthesis: %w", err)
	}
	return deleted, nil
}

// Exists reports whether a synthesis with id is stored.
func (r *SynthesisRepository) Exists(ctx context.Context, id string) (bool, error) {
	ok, err := exists(ctx, r.coll, id)
	if err != nil {
		return false, fmt.Errorf("failed to check synthesis: %w", err)
	}
	return ok, nil
}

// Count returns the number of stored syntheses.
func (r *SynthesisRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.Count(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count syntheses: %w", err)
	}
	return n, nil
}
