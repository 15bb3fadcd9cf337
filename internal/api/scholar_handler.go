package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/bionexus-api/internal/api/shared"
	"github.com/phrazzld/bionexus-api/internal/domain"
	"github.com/phrazzld/bionexus-api/internal/service"
)

// ScholarHandler handles requests of the scholar zone.
type ScholarHandler struct {
	scholar *service.ScholarService
	now     func() time.Time
	logger  *slog.Logger
}

// NewScholarHandler creates a new ScholarHandler. now is the clock used to
// report the remaining exam time and should be the session store's clock.
func NewScholarHandler(scholar *service.ScholarService, now func() time.Time, logger *slog.Logger) *ScholarHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &ScholarHandler{
		scholar: scholar,
		now:     now,
		logger:  logger.With("component", "scholar_handler"),
	}
}

// Solve handles POST /api/sessions/{id}/scholar/solve requests.
func (h *ScholarHandler) Solve(w http.ResponseWriter, r *http.Request) {
	id, r, ok := withSessionID(w, r)
	if !ok {
		return
	}
	var req SolveRequest
	if !decodeOptionalAndValidate(w, r, &req) {
		return
	}
	img, err := req.Image()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	reply, err := h.scholar.Solve(r.Context(), id, img)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, SolveResponse{
		ReplyResponse: toReplyResponse(reply.Reply),
		Competency:    reply.Competency,
	})
}

// LearningPath handles POST /api/sessions/{id}/scholar/learning-path requests.
func (h *ScholarHandler) LearningPath(w http.ResponseWriter, r *http.Request) {
	h.sessionReply(w, r, h.scholar.LearningPath)
}

// IntensiveQuiz handles POST /api/sessions/{id}/scholar/quiz requests.
func (h *ScholarHandler) IntensiveQuiz(w http.ResponseWriter, r *http.Request) {
	h.sessionReply(w, r, h.scholar.IntensiveQuiz)
}

// StudyGuide handles POST /api/scholar/study-guide requests.
func (h *ScholarHandler) StudyGuide(w http.ResponseWriter, r *http.Request) {
	var req StudyGuideRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	lang, err := domain.ParseLanguage(req.Language)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	reply, err := h.scholar.StudyGuide(r.Context(), service.Resource{
		Title: req.Title,
		Level: req.Level,
		Type:  req.Type,
	}, lang)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, toReplyResponse(reply))
}

// MentorReply handles POST /api/sessions/{id}/scholar/mentor requests.
func (h *ScholarHandler) MentorReply(w http.ResponseWriter, r *http.Request) {
	id, r, ok := withSessionID(w, r)
	if !ok {
		return
	}
	var req MessageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	reply, err := h.scholar.MentorReply(r.Context(), id, req.Text)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, toReplyResponse(reply))
}

// StartExam handles POST /api/sessions/{id}/scholar/exam requests. A
// malformed generated exam is answered with 502 and leaves the prior exam in
// place.
func (h *ScholarHandler) StartExam(w http.ResponseWriter, r *http.Request) {
	id, r, ok := withSessionID(w, r)
	if !ok {
		return
	}
	var req ExamRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	reply, err := h.scholar.StartExam(r.Context(), id, req.Config())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ExamResponse{
		ReplyResponse:   toReplyResponse(reply.Reply),
		Exam:            reply.Exam,
		TimeLeftSeconds: h.timeLeft(reply.Exam),
	})
}

// AnswerExam handles PUT /api/sessions/{id}/scholar/exam/answers/{index} requests.
func (h *ScholarHandler) AnswerExam(w http.ResponseWriter, r *http.Request) {
	id, r, ok := withSessionID(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		HandleAPIError(w, r, domain.ErrQuestionIndex, "")
		return
	}
	var req AnswerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	exam, err := h.scholar.AnswerExam(r.Context(), id, index, req.Answer)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ExamStateResponse{
		Exam:            exam,
		TimeLeftSeconds: h.timeLeft(exam),
	})
}

// FinishExam handles POST /api/sessions/{id}/scholar/exam/finish requests.
func (h *ScholarHandler) FinishExam(w http.ResponseWriter, r *http.Request) {
	id, r, ok := withSessionID(w, r)
	if !ok {
		return
	}

	result, err := h.scholar.FinishExam(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ExamResultResponse{
		ReplyResponse:     toReplyResponse(result.Reply),
		Exam:              result.Exam,
		Correct:           result.Correct,
		Total:             result.Total,
		FeedbackMalformed: result.FeedbackMalformed,
	})
}

func (h *ScholarHandler) sessionReply(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, id uuid.UUID) (service.Reply, error),
) {
	id, r, ok := withSessionID(w, r)
	if !ok {
		return
	}

	reply, err := op(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, toReplyResponse(reply))
}

func (h *ScholarHandler) timeLeft(exam *domain.Exam) int {
	if exam == nil {
		return 0
	}
	return int(exam.TimeLeft(h.now()).Seconds())
}
