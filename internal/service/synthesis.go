package service

import (
	"context"
	"strings"

	"github.com/featherbook/featherbook/internal/metrics"
	"github.com/featherbook/featherbook/internal/model"
	"github.com/featherbook/featherbook/internal/repository"
)

// SynthesisService handles synthesis business logic.
type SynthesisService struct {
	repo    *repository.Repository
	metrics metrics.Recorder
}

// NewSynthesisService creates a new SynthesisService.
func NewSynthesisService(repo *repository.Repository, recorder metrics.Recorder) *SynthesisService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &SynthesisService{repo: repo, metrics: recorder}
}

// CreateSynthesisInput defines input for creating a synthesis.
type CreateSynthesisInput struct {
	URL         string
	IsGenerated bool
	NoteID      *string
	Title       *string
	Attachments []model.SynthesisAttachment
}

// CreateSynthesis stores a new synthesis. A linked note must exist.
func (s *SynthesisService) CreateSynthesis(ctx context.Context, input CreateSynthesisInput) (*model.Synthesis, error) {
	if strings.TrimSpace(input.URL) == "" {
		return nil, ErrURLRequired
	}

	syn := model.NewSynthesis(input.URL, input.IsGenerated)
	if input.NoteID != nil {
		ok, err := s.repo.Notes.Exists(ctx, *input.NoteID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrNoteNotFound
		}
		syn.LinkNote(*input.NoteID)
	}
	if input.Title != nil {
		syn.SetTitle(*input.Title)
	}
	if input.Attachments != nil {
		syn.Attachments = input.Attachments
	}

	if _, err := s.repo.Syntheses.Create(ctx, syn); err != nil {
		return nil, err
	}
	s.metrics.IncSynthesisCreated()
	return syn, nil
}

// GetSynthesis retrieves a synthesis by id.
func (s *SynthesisService) GetSynthesis(ctx context.Context, id string) (*model.Synthesis, error) {
	syn, err := s.repo.Syntheses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if syn == nil {
		return nil, ErrSynthesisNotFound
	}
	return syn, nil
}

// ListSyntheses returns every synthesis.
func (s *SynthesisService) ListSyntheses(ctx context.Context) ([]*model.Synthesis, error) {
	return s.repo.Syntheses.ListAll(ctx)
}

// SearchSyntheses returns syntheses whose title contains term, ignoring case.
func (s *SynthesisService) SearchSyntheses(ctx context.Context, term string) ([]*model.Synthesis, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, ErrSearchTermRequired
	}
	return s.repo.Syntheses.SearchByTitle(ctx, term)
}

// ListByNote returns the syntheses linked to a note. The note must exist.
func (s *SynthesisService) ListByNote(ctx context.Context, noteID string) ([]*model.Synthesis, error) {
	ok, err := s.repo.Notes.Exists(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoteNotFound
	}
	return s.repo.Syntheses.ListByNote(ctx, noteID)
}

// DeleteSynthesis removes a synthesis.
func (s *SynthesisService) DeleteSynthesis(ctx context.Context, id string) error {
	deleted, err := s.repo.Syntheses.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrSynthesisNotFound
	}
	s.metrics.IncSynthesisDeleted()
	return nil
}
