package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
	"github.com/kirillkom/legal-assistant/internal/core/ports"
)

// AnalyzeTextUseCase runs entity tagging, risk assessment, summarization and
// clause splitting over one text. Every step sees the full text; only the
// summarizer bounds its own input.
type AnalyzeTextUseCase struct {
	repo       ports.DocumentRepository
	entities   ports.EntityExtractor
	assessor   ports.RiskAssessor
	summarizer ports.Summarizer
	clauses    ports.ClauseSplitter
	cache      ports.AssessmentCache
	observer   ports.AnalysisObserver
	logger     *slog.Logger
}

type AnalyzeDeps struct {
	Repo       ports.DocumentRepository
	Entities   ports.EntityExtractor
	Assessor   ports.RiskAssessor
	Summarizer ports.Summarizer
	Clauses    ports.ClauseSplitter
	// Cache and Observer are optional.
	Cache    ports.AssessmentCache
	Observer ports.AnalysisObserver
	Logger   *slog.Logger
}

func NewAnalyzeTextUseCase(deps AnalyzeDeps) *AnalyzeTextUseCase {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyzeTextUseCase{
		repo:       deps.Repo,
		entities:   deps.Entities,
		assessor:   deps.Assessor,
		summarizer: deps.Summarizer,
		clauses:    deps.Clauses,
		cache:      deps.Cache,
		observer:   deps.Observer,
		logger:     logger,
	}
}

func (uc *AnalyzeTextUseCase) AnalyzeText(ctx context.Context, text string) (*domain.DocumentAnalysis, error) {
	text = strings.TrimSpace(text)
	return uc.Analyze(ctx, domain.DocumentFingerprint(text), text)
}

func (uc *AnalyzeTextUseCase) Analyze(ctx context.Context, documentID, text string) (*domain.DocumentAnalysis, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "analyze text", errors.New("text is empty"))
	}
	entities := uc.entities.Extract(text)
	assessment := uc.assess(ctx, text)

	summary, err := uc.summarizer.Summarize(ctx, text)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		uc.logger.Warn("summary_failed", "document_id", documentID, "error", err)
		summary = ""
	}

	return &domain.DocumentAnalysis{
		DocumentID:  documentID,
		Text:        text,
		Summary:     summary,
		Entities:    entities,
		EntityStats: entities.Stats(),
		Clauses:     uc.clauses.Clauses(text),
		Risk:        assessment,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// assess serves repeated texts from the cache. Cache failures only cost a
// recomputation.
func (uc *AnalyzeTextUseCase) assess(ctx context.Context, text string) domain.RiskAssessment {
	key := domain.ContentHash(text)
	if uc.cache != nil {
		cached, ok, err := uc.cache.Get(ctx, key)
		if err != nil {
			uc.logger.Warn("assessment_cache_get_failed", "error", err)
		}
		if ok && cached != nil {
			uc.observe(*cached)
			return *cached
		}
	}

	assessment := uc.assessor.Assess(text)
	uc.observe(assessment)

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, key, assessment); err != nil {
			uc.logger.Warn("assessment_cache_set_failed", "error", err)
		}
	}
	return assessment
}

func (uc *AnalyzeTextUseCase) observe(assessment domain.RiskAssessment) {
	if uc.observer != nil {
		uc.observer.ObserveAssessment(assessment)
	}
}

// GetAnalysis returns the stored analysis of a processed document.
func (uc *AnalyzeTextUseCase) GetAnalysis(ctx context.Context, documentID string) (*domain.DocumentAnalysis, error) {
	if _, err := readyDocument(ctx, uc.repo, documentID); err != nil {
		return nil, err
	}
	analysis, err := uc.repo.GetAnalysis(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("load analysis: %w", err)
	}
	return analysis, nil
}

func readyDocument(ctx context.Context, repo ports.DocumentRepository, documentID string) (*domain.Document, error) {
	doc, err := repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("fetch document by id: %w", err)
	}
	switch doc.Status {
	case domain.StatusReady:
		return doc, nil
	case domain.StatusFailed:
		return nil, domain.WrapError(domain.ErrDocumentNotReady, "document status", fmt.Errorf("processing failed: %s", doc.Error))
	default:
		return nil, domain.WrapError(domain.ErrDocumentNotReady, "document status", fmt.Errorf("status %s", doc.Status))
	}
}
