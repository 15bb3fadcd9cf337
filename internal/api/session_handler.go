package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/bionexus-api/internal/api/shared"
	"github.com/phrazzld/bionexus-api/internal/domain"
	"github.com/phrazzld/bionexus-api/internal/session"
)

// SessionManager creates and navigates learner sessions.
type SessionManager interface {
	Create(lang domain.Language, view domain.Mode) (*session.Session, error)
	Get(id uuid.UUID) (*session.Session, error)
	Navigate(id uuid.UUID, view domain.Mode) (*session.Session, error)
	SetLanguage(id uuid.UUID, lang domain.Language) (*session.Session, error)
	Now() time.Time
}

// SessionHandler handles session lifecycle requests.
type SessionHandler struct {
	sessions SessionManager
	logger   *slog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions SessionManager, logger *slog.Logger) *SessionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionHandler{
		sessions: sessions,
		logger:   logger.With("component", "session_handler"),
	}
}

// CreateSession handles POST /api/sessions requests.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if !decodeOptionalAndValidate(w, r, &req) {
		return
	}

	lang, err := domain.ParseLanguage(req.Language)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	view := domain.ModeStudent
	if req.View != "" {
		if view, err = domain.ParseMode(req.View); err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
	}

	sess, err := h.sessions.Create(lang, view)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	h.logger.DebugContext(r.Context(), "session created", "session_id", sess.ID.String())
	shared.RespondWithJSON(w, r, http.StatusCreated, SessionResponse{Session: sess})
}

// GetSession handles GET /api/sessions/{id} requests.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, r, ok := withSessionID(w, r)
	if !ok {
		return
	}

	sess, err := h.sessions.Get(id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, SessionResponse{Session: sess})
}

// Navigate handles PUT /api/sessions/{id}/view requests. Responses still in
// flight for the previous view are dropped when they arrive.
func (h *SessionHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	id, r, ok := withSessionID(w, r)
	if !ok {
		return
	}

	var req NavigateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	view, err := domain.ParseMode(req.View)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	sess, err := h.sessions.Navigate(id, view)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, SessionResponse{Session: sess})
}

// SetLanguage handles PUT /api/sessions/{id}/language requests.
func (h *SessionHandler) SetLanguage(w http.ResponseWriter, r *http.Request) {
	id, r, ok := withSessionID(w, r)
	if !ok {
		return
	}

	var req LanguageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	lang, err := domain.ParseLanguage(req.Language)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	sess, err := h.sessions.SetLanguage(id, lang)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, SessionResponse{Session: sess})
}
