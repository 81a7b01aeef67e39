package service

import (
	"context"
	"errors"
	"testing"

	"github.com/featherbook/featherbook/internal/model"
)

func TestCreateNote_Validation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	tests := []struct {
		name  string
		input CreateNoteInput
	}{
		{"empty_content", CreateNoteInput{Content: "  "}},
		{"missing_url", CreateNoteInput{Content: "x", Attachments: []AttachmentInput{{Type: "Audio"}}}},
		{"bad_type", CreateNoteInput{Content: "x", Attachments: []AttachmentInput{{URL: "https://a", Type: "Video"}}}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := env.notes.CreateNote(context.Background(), test.input)
			var vErr *model.ValidationError
			if !errors.Is(err, ErrContentRequired) && !errors.As(err, &vErr) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	if n, _ := env.repo.Notes.Count(context.Background()); n != 0 {
		t.Errorf("no note should be stored, got %d", n)
	}
}

func TestNoteLifecycle(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	note, err := env.notes.CreateNote(ctx, CreateNoteInput{
		Content:     "hello",
		Attachments: []AttachmentInput{{URL: "https://cdn/a.mp3", Type: "Audio"}},
	})
	if err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}

	got, err := env.notes.GetNote(ctx, note.ID)
	if err != nil {
		t.Fatalf("GetNote failed: %v", err)
	}
	if len(got.Attachments) != 1 || got.Attachments[0].Type != model.AttachmentAudio || got.Attachments[0].NoteID != note.ID {
		t.Fatalf("attachments = %+v", got.Attachments)
	}

	updated, err := env.notes.UpdateNote(ctx, UpdateNoteInput{
		ID:      note.ID,
		Content: strPtr("hello again"),
		Attachments: &[]AttachmentInput{
			{URL: "https://cdn/b.pdf", Type: "Document"},
			{URL: "https://cdn/c.mp3", Type: "Audio"},
		},
	})
	if err != nil {
		t.Fatalf("UpdateNote failed: %v", err)
	}
	if updated.Content != "hello again" {
		t.Errorf("content = %q", updated.Content)
	}

	got, err = env.notes.GetNote(ctx, note.ID)
	if err != nil {
		t.Fatalf("GetNote failed: %v", err)
	}
	if len(got.Attachments) != 2 || got.Attachments[0].URL != "https://cdn/b.pdf" {
		t.Fatalf("attachments after update = %+v", got.Attachments)
	}
	if n, _ := env.repo.Attachments.Count(ctx); n != 2 {
		t.Errorf("stored attachments = %d, want 2", n)
	}

	if err := env.notes.DeleteNote(ctx, note.ID); err != nil {
		t.Fatalf("DeleteNote failed: %v", err)
	}
	if _, err := env.notes.GetNote(ctx, note.ID); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("expected ErrNoteNotFound, got %v", err)
	}
	if n, _ := env.repo.Attachments.Count(ctx); n != 0 {
		t.Errorf("attachments must cascade, %d left", n)
	}
	if err := env.notes.DeleteNote(ctx, note.ID); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("second delete: expected ErrNoteNotFound, got %v", err)
	}

	snap := env.metrics.Snapshot()
	if snap.NotesCreated != 1 || snap.NotesUpdated != 1 || snap.NotesDeleted != 1 {
		t.Errorf("metrics = %+v", snap)
	}
}

func TestUpdateNote_Missing(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	_, err := env.notes.UpdateNote(context.Background(), UpdateNoteInput{ID: "missing", Content: strPtr("x")})
	if !errors.Is(err, ErrNoteNotFound) {
		t.Fatalf("expected ErrNoteNotFound, got %v", err)
	}
}
