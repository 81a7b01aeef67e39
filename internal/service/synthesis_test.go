package service

import (
	"context"
	"errors"
	"testing"

	"github.com/featherbook/featherbook/internal/model"
)

func TestCreateSynthesis(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.syntheses.CreateSynthesis(ctx, CreateSynthesisInput{}); !errors.Is(err, ErrURLRequired) {
		t.Fatalf("expected ErrURLRequired, got %v", err)
	}
	if _, err := env.syntheses.CreateSynthesis(ctx, CreateSynthesisInput{URL: "https://s", NoteID: strPtr("missing")}); !errors.Is(err, ErrNoteNotFound) {
		t.Fatalf("expected ErrNoteNotFound, got %v", err)
	}

	note, err := env.notes.CreateNote(ctx, CreateNoteInput{Content: "source"})
	if err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}

	syn, err := env.syntheses.CreateSynthesis(ctx, CreateSynthesisInput{
		URL:         "https://s/1",
		IsGenerated: true,
		NoteID:      &note.ID,
		Title:       strPtr("Weekly Summary"),
		Attachments: []model.SynthesisAttachment{{URL: "https://s/1.pdf", Type: "pdf", Name: "1.pdf", Size: 42}},
	})
	if err != nil {
		t.Fatalf("CreateSynthesis failed: %v", err)
	}

	got, err := env.syntheses.GetSynthesis(ctx, syn.ID)
	if err != nil {
		t.Fatalf("GetSynthesis failed: %v", err)
	}
	if got.NoteID == nil || *got.NoteID != note.ID || len(got.Attachments) != 1 || got.Attachments[0].Size != 42 {
		t.Errorf("synthesis = %+v", got)
	}

	linked, err := env.syntheses.ListByNote(ctx, note.ID)
	if err != nil {
		t.Fatalf("ListByNote failed: %v", err)
	}
	if len(linked) != 1 {
		t.Errorf("linked = %d, want 1", len(linked))
	}
}

func TestSearchSyntheses(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	for _, title := range []string{"Weekly Summary", "monthly summary", "Notes"} {
		if _, err := env.syntheses.CreateSynthesis(ctx, CreateSynthesisInput{URL: "https://s", Title: strPtr(title)}); err != nil {
			t.Fatalf("CreateSynthesis failed: %v", err)
		}
	}
	if _, err := env.syntheses.CreateSynthesis(ctx, CreateSynthesisInput{URL: "https://s"}); err != nil {
		t.Fatalf("CreateSynthesis failed: %v", err)
	}

	tests := []struct {
		term string
		want int
	}{
		{"SUMMARY", 2},
		{"notes", 1},
		{"a.b", 0},
	}
	for _, test := range tests {
		t.Run(test.term, func(t *testing.T) {
			got, err := env.syntheses.SearchSyntheses(ctx, test.term)
			if err != nil {
				t.Fatalf("SearchSyntheses failed: %v", err)
			}
			if len(got) != test.want {
				t.Errorf("got %d results, want %d", len(got), test.want)
			}
		})
	}

	if _, err := env.syntheses.SearchSyntheses(ctx, " "); !errors.Is(err, ErrSearchTermRequired) {
		t.Errorf("expected ErrSearchTermRequired, got %v", err)
	}
}

func TestDeleteSynthesis(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	syn, err := env.syntheses.CreateSynthesis(ctx, CreateSynthesisInput{URL: "https://s"})
	if err != nil {
		t.Fatalf("CreateSynthesis failed: %v", err)
	}
	if err := env.syntheses.DeleteSynthesis(ctx, syn.ID); err != nil {
		t.Fatalf("DeleteSynthesis failed: %v", err)
	}
	if err := env.syntheses.DeleteSynthesis(ctx, syn.ID); !errors.Is(err, ErrSynthesisNotFound) {
		t.Errorf("expected ErrSynthesisNotFound, got %v", err)
	}
	if got := env.metrics.Snapshot().SynthesesDeleted; got != 1 {
		t.Errorf("SynthesesDeleted = %d, want 1", got)
	}
}
