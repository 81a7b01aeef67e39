package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/featherbook/featherbook/internal/codec"
	"github.com/featherbook/featherbook/internal/handler/dto"
	"github.com/featherbook/featherbook/internal/service"
)

// NoteHandler handles HTTP requests for note operations.
type NoteHandler struct {
	notes     *service.NoteService
	syntheses *service.SynthesisService
	logger    *slog.Logger
}

// NewNoteHandler creates a new NoteHandler.
func NewNoteHandler(notes *service.NoteService, syntheses *service.SynthesisService, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{notes: notes, syntheses: syntheses, logger: logger}
}

// List handles GET /api/v1/notes.
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	notes, err := h.notes.ListNotes(r.Context())
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documents(notes, codec.EncodeNote))
}

// Create handles POST /api/v1/notes.
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateNoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Content == nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", service.ErrContentRequired.Error())
		return
	}

	note, err := h.notes.CreateNote(r.Context(), service.CreateNoteInput{
		Content:     *req.Content,
		Attachments: attachmentInputs(req.Attachments),
	})
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}

	h.logger.Info("note_created",
		slog.String("note_id", note.ID),
		slog.Int("attachments", len(note.Attachments)),
	)
	writeJSON(w, http.StatusCreated, codec.EncodeNote(note))
}

// Get handles GET /api/v1/notes/{id}.
func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	note, err := h.notes.GetNote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, codec.EncodeNote(note))
}

// Update handles PUT /api/v1/notes/{id}.
func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateNoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input := service.UpdateNoteInput{
		ID:      chi.URLParam(r, "id"),
		Content: req.Content,
	}
	if req.Attachments != nil {
		inputs := attachmentInputs(*req.Attachments)
		input.Attachments = &inputs
	}

	note, err := h.notes.UpdateNote(r.Context(), input)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}

	h.logger.Info("note_updated", slog.String("note_id", note.ID))
	writeJSON(w, http.StatusOK, codec.EncodeNote(note))
}

// Delete handles DELETE /api/v1/notes/{id}.
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.notes.DeleteNote(r.Context(), id); err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}

	h.logger.Info("note_deleted", slog.String("note_id", id))
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Note deleted"})
}

// Syntheses handles GET /api/v1/notes/{id}/syntheses.
func (h *NoteHandler) Syntheses(w http.ResponseWriter, r *http.Request) {
	syntheses, err := h.syntheses.ListByNote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documents(syntheses, codec.EncodeSynthesis))
}

func attachmentInputs(reqs []dto.AttachmentRequest) []service.AttachmentInput {
	out := make([]service.AttachmentInput, 0, len(reqs))
	for _, a := range reqs {
		out = append(out, service.AttachmentInput{URL: a.URL, Type: a.Type})
	}
	return out
}
