package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/bionexus-api/internal/api/shared"
	"github.com/phrazzld/bionexus-api/internal/domain"
	"github.com/phrazzld/bionexus-api/internal/generation"
	"github.com/phrazzld/bionexus-api/internal/service"
)

// PatientHandler handles requests of the bio-digital twin zone and speech.
type PatientHandler struct {
	patient *service.PatientService
	logger  *slog.Logger
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(patient *service.PatientService, logger *slog.Logger) *PatientHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PatientHandler{
		patient: patient,
		logger:  logger.With("component", "patient_handler"),
	}
}

// OrganInsight handles POST /api/patient/organs/{organ}/insight requests.
func (h *PatientHandler) OrganInsight(w http.ResponseWriter, r *http.Request) {
	organ, err := domain.ParseOrgan(chi.URLParam(r, "organ"))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	var req InsightRequest
	if !decodeOptionalAndValidate(w, r, &req) {
		return
	}
	lang, err := domain.ParseLanguage(req.Language)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	reply, err := h.patient.OrganInsight(r.Context(), organ, lang)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, toReplyResponse(reply))
}

// SelectOrgan handles POST /api/sessions/{id}/patient/organs/{organ} requests.
func (h *PatientHandler) SelectOrgan(w http.ResponseWriter, r *http.Request) {
	id, r, ok := withSessionID(w, r)
	if !ok {
		return
	}
	organ, err := domain.ParseOrgan(chi.URLParam(r, "organ"))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	reply, err := h.patient.SelectOrgan(r.Context(), id, organ)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, toReplyResponse(reply))
}

// Speak handles POST /api/speech requests.
func (h *PatientHandler) Speak(w http.ResponseWriter, r *http.Request) {
	var req SpeechRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	voice, err := service.ParseVoice(req.Voice)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	reply, err := h.patient.Speak(r.Context(), req.Text, voice)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	resp := SpeechResponse{
		Degraded: reply.Degraded,
		Attempts: reply.Attempts,
	}
	if reply.ErrorKind != generation.KindNone {
		resp.ErrorKind = reply.ErrorKind.String()
	}
	if reply.Audio != nil {
		resp.AudioBase64 = reply.Audio.Base64()
		resp.MIMEType = reply.Audio.MIMEType
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}
