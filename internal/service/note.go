package service

import (
	"context"
	"strings"

	"github.com/featherbook/featherbook/internal/metrics"
	"github.com/featherbook/featherbook/internal/model"
	"github.com/featherbook/featherbook/internal/repository"
)

// NoteService handles note business logic.
type NoteService struct {
	repo    *repository.Repository
	metrics metrics.Recorder
}

// NewNoteService creates a new NoteService.
func NewNoteService(repo *repository.Repository, recorder metrics.Recorder) *NoteService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &NoteService{repo: repo, metrics: recorder}
}

// AttachmentInput describes an attachment to create.
type AttachmentInput struct {
	URL  string
	Type string
}

// CreateNoteInput defines input for creating a note.
type CreateNoteInput struct {
	Content     string
	Attachments []AttachmentInput
}

// UpdateNoteInput defines input for updating a note. Nil fields are left
// unchanged; a non-nil Attachments replaces the whole set.
type UpdateNoteInput struct {
	ID          string
	Content     *string
	Attachments *[]AttachmentInput
}

// CreateNote creates a note and its attachments.
func (s *NoteService) CreateNote(ctx context.Context, input CreateNoteInput) (*model.Note, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, ErrContentRequired
	}

	note := model.NewNote(input.Content)
	attachments, err := buildAttachments(input.Attachments)
	if err != nil {
		return nil, err
	}
	for _, a := range attachments {
		note.AddAttachment(a)
	}

	if _, err := s.repo.Notes.Create(ctx, note); err != nil {
		return nil, err
	}
	s.metrics.IncNoteCreated()
	return note, nil
}

// GetNote retrieves a note with its attachments.
func (s *NoteService) GetNote(ctx context.Context, id string) (*model.Note, error) {
	note, err := s.repo.Notes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, ErrNoteNotFound
	}
	return note, nil
}

// ListNotes returns every note.
func (s *NoteService) ListNotes(ctx context.Context) ([]*model.Note, error) {
	return s.repo.Notes.ListAll(ctx)
}

// UpdateNote applies input to a stored note.
func (s *NoteService) UpdateNote(ctx context.Context, input UpdateNoteInput) (*model.Note, error) {
	note, err := s.repo.Notes.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, ErrNoteNotFound
	}

	if input.Content != nil {
		if strings.TrimSpace(*input.Content) == "" {
			return nil, ErrContentRequired
		}
		note.Content = *input.Content
	}

	if input.Attachments != nil {
		attachments, err := buildAttachments(*input.Attachments)
		if err != nil {
			return nil, err
		}
		note.Attachments = note.Attachments[:0]
		for _, a := range attachments {
			note.AddAttachment(a)
		}
	}

	updated, err := s.repo.Notes.Update(ctx, note)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		// Deleted between the read and the write.
		return nil, ErrNoteNotFound
	}
	s.metrics.IncNoteUpdated()
	return updated, nil
}

// DeleteNote removes a note and its attachments.
func (s *NoteService) DeleteNote(ctx context.Context, id string) error {
	deleted, err := s.repo.Notes.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNoteNotFound
	}
	s.metrics.IncNoteDeleted()
	return nil
}

func buildAttachments(inputs []AttachmentInput) ([]*model.Attachment, error) {
	out := make([]*model.Attachment, 0, len(inputs))
	for _, in := range inputs {
		if strings.TrimSpace(in.URL) == "" {
			return nil, &model.ValidationError{Field: "attachment url", Msg: "is required"}
		}
		a, err := model.NewAttachment(in.URL, in.Type)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
