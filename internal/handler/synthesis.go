package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/featherbook/featherbook/internal/codec"
	"github.com/featherbook/featherbook/internal/handler/dto"
	"github.com/featherbook/featherbook/internal/model"
	"github.com/featherbook/featherbook/internal/service"
)

// SynthesisHandler handles HTTP requests for synthesis operations.
type SynthesisHandler struct {
	svc    *service.SynthesisService
	logger *slog.Logger
}

// NewSynthesisHandler creates a new SynthesisHandler.
func NewSynthesisHandler(svc *service.SynthesisService, logger *slog.Logger) *SynthesisHandler {
	return &SynthesisHandler{svc: svc, logger: logger}
}

// List handles GET /api/v1/syntheses. A q parameter searches titles.
func (h *SynthesisHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		syntheses []*model.Synthesis
		err       error
	)
	if q := r.URL.Query().Get("q"); q != "" {
		syntheses, err = h.svc.SearchSyntheses(r.Context(), q)
	} else {
		syntheses, err = h.svc.ListSyntheses(r.Context())
	}
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documents(syntheses, codec.EncodeSynthesis))
}

// Create handles POST /api/v1/syntheses.
func (h *SynthesisHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateSynthesisRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input := service.CreateSynthesisInput{
		URL:         req.URL,
		IsGenerated: req.IsGenerated,
		NoteID:      req.NoteID,
		Title:       req.Title,
	}
	for _, a := range req.Attachments {
		input.Attachments = append(input.Attachments, model.SynthesisAttachment{
			URL:  a.URL,
			Type: a.Type,
			Name: a.Name,
			Size: a.Size,
		})
	}

	syn, err := h.svc.CreateSynthesis(r.Context(), input)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}

	h.logger.Info("synthesis_created", slog.String("synthesis_id", syn.ID))
	writeJSON(w, http.StatusCreated, codec.EncodeSynthesis(syn))
}

// Get handles GET /api/v1/syntheses/{id}.
func (h *SynthesisHandler) Get(w http.ResponseWriter, r *http.Request) {
	syn, err := h.svc.GetSynthesis(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, codec.EncodeSynthesis(syn))
}

// Delete handles DELETE /api/v1/syntheses/{id}.
func (h *SynthesisHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteSynthesis(r.Context(), id); err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}

	h.logger.Info("synthesis_deleted", slog.String("synthesis_id", id))
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Synthesis deleted"})
}
