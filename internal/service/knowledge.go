package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/phrazzld/bionexus-api/internal/domain"
	"github.com/phrazzld/bionexus-api/internal/generation"
)

// KnowledgeService answers Knowledge Hub searches and concept explanations.
// It keeps no session state.
type KnowledgeService struct {
	core
}

// NewKnowledgeService creates a KnowledgeService.
func NewKnowledgeService(gen generation.Generator, logger *slog.Logger, opts ...Option) (*KnowledgeService, error) {
	c, err := newCore("knowledge", gen, logger, opts)
	if err != nil {
		return nil, err
	}
	return &KnowledgeService{core: c}, nil
}

// Search summarizes a hub query in the style of mode.
func (s *KnowledgeService) Search(ctx context.Context, query string, mode domain.Mode, lang domain.Language) (Reply, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Reply{}, domain.ErrEmptyContent
	}
	if !mode.Valid() {
		return Reply{}, domain.ErrInvalidMode
	}

	res, err := s.prompt(ctx, tmplHubSearch, struct {
		Query    string
		Language domain.Language
	}{query, lang}, mode.ContextTag())
	if err != nil {
		return Reply{}, err
	}

	return s.reply(ctx, res, fallbacks(lang, "No information found.", "Không tìm thấy thông tin.")), nil
}

// ExplainConcept explains a concept node of the knowledge graph.
func (s *KnowledgeService) ExplainConcept(ctx context.Context, concept string, lang domain.Language) (Reply, error) {
	concept = strings.TrimSpace(concept)
	if concept == "" {
		return Reply{}, domain.ErrEmptyContent
	}

	res, err := s.prompt(ctx, tmplConcept, struct {
		Concept  string
		Language domain.Language
	}{concept, lang}, generation.ContextStudent)
	if err != nil {
		return Reply{}, err
	}

	return s.reply(ctx, res, fallbacks(lang, "No data available.", "Không có dữ liệu.")), nil
}
