package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/bionexus-api/internal/api/shared"
	"github.com/phrazzld/bionexus-api/internal/service"
)

// ClinicalHandler handles requests of the clinical simulation zone.
type ClinicalHandler struct {
	clinical *service.ClinicalService
	logger   *slog.Logger
}

// NewClinicalHandler creates a new ClinicalHandler.
func NewClinicalHandler(clinical *service.ClinicalService, logger *slog.Logger) *ClinicalHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClinicalHandler{
		clinical: clinical,
		logger:   logger.With("component", "clinical_handler"),
	}
}

// SendMessage handles POST /api/sessions/{id}/clinical/messages requests.
func (h *ClinicalHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	id, r, ok := withSessionID(w, r)
	if !ok {
		return
	}
	var req MessageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	reply, err := h.clinical.SendMessage(r.Context(), id, req.Text)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ClinicalMessageResponse{
		ReplyResponse:       toReplyResponse(reply.Reply),
		Differential:        reply.Differential,
		DifferentialUpdated: reply.DifferentialUpdated,
	})
}

// OrderLab handles POST /api/sessions/{id}/clinical/labs/{labID} requests.
func (h *ClinicalHandler) OrderLab(w http.ResponseWriter, r *http.Request) {
	id, r, ok := withSessionID(w, r)
	if !ok {
		return
	}

	reply, err := h.clinical.OrderLab(r.Context(), id, chi.URLParam(r, "labID"))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, LabResponse{
		ReplyResponse: toReplyResponse(reply.Reply),
		Lab:           reply.Lab,
		Cached:        reply.Cached,
	})
}

// Feedback handles POST /api/sessions/{id}/clinical/feedback requests.
func (h *ClinicalHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	id, r, ok := withSessionID(w, r)
	if !ok {
		return
	}

	reply, err := h.clinical.Feedback(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, toReplyResponse(reply))
}
