package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/bionexus-api/internal/api/shared"
	"github.com/phrazzld/bionexus-api/internal/domain"
	"github.com/phrazzld/bionexus-api/internal/service"
)

// KnowledgeHandler handles the knowledge hub and knowledge graph requests.
// Both are stateless and need no session.
type KnowledgeHandler struct {
	knowledge *service.KnowledgeService
	logger    *slog.Logger
}

// NewKnowledgeHandler creates a new KnowledgeHandler.
func NewKnowledgeHandler(knowledge *service.KnowledgeService, logger *slog.Logger) *KnowledgeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &KnowledgeHandler{
		knowledge: knowledge,
		logger:    logger.With("component", "knowledge_handler"),
	}
}

// Search handles POST /api/knowledge/search requests.
func (h *KnowledgeHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	mode, err := domain.ParseMode(req.Mode)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	lang, err := domain.ParseLanguage(req.Language)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	reply, err := h.knowledge.Search(r.Context(), req.Query, mode, lang)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, toReplyResponse(reply))
}

// ExplainConcept handles POST /api/knowledge/concepts requests.
func (h *KnowledgeHandler) ExplainConcept(w http.ResponseWriter, r *http.Request) {
	var req ConceptRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	lang, err := domain.ParseLanguage(req.Language)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	reply, err := h.knowledge.ExplainConcept(r.Context(), req.Concept, lang)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, toReplyResponse(reply))
}
