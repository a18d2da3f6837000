package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
	"github.com/kirillkom/legal-assistant/internal/core/ports"
)

// AskUseCase answers questions about processed documents or raw text and keeps
// the per-document history.
type AskUseCase struct {
	repo                ports.DocumentRepository
	answerer            ports.QuestionAnswerer
	history             ports.ChatHistoryStore
	observer            ports.AnalysisObserver
	logger              *slog.Logger
	defaultJurisdiction string
}

type AskDeps struct {
	Repo     ports.DocumentRepository
	Answerer ports.QuestionAnswerer
	History  ports.ChatHistoryStore
	Observer ports.AnalysisObserver
	Logger   *slog.Logger
}

func NewAskUseCase(deps AskDeps, defaultJurisdiction string) *AskUseCase {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AskUseCase{
		repo:                deps.Repo,
		answerer:            deps.Answerer,
		history:             deps.History,
		observer:            deps.Observer,
		logger:              logger,
		defaultJurisdiction: defaultJurisdiction,
	}
}

func (uc *AskUseCase) Ask(ctx context.Context, documentID, question, jurisdiction string) (domain.QAResult, error) {
	if err := validateQuestion(question); err != nil {
		return domain.QAResult{}, err
	}
	if _, err := readyDocument(ctx, uc.repo, documentID); err != nil {
		return domain.QAResult{}, err
	}
	analysis, err := uc.repo.GetAnalysis(ctx, documentID)
	if err != nil {
		return domain.QAResult{}, fmt.Errorf("load analysis: %w", err)
	}
	return uc.answer(ctx, documentID, analysis.Text, question, jurisdiction), nil
}

// AskText answers against raw text; its history is keyed by the text
// fingerprint.
func (uc *AskUseCase) AskText(ctx context.Context, text, question, jurisdiction string) (domain.QAResult, error) {
	if err := validateQuestion(question); err != nil {
		return domain.QAResult{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.QAResult{}, domain.WrapError(domain.ErrDocumentNotLoaded, "ask text", errors.New("text is empty"))
	}
	return uc.answer(ctx, domain.DocumentFingerprint(text), text, question, jurisdiction), nil
}

func (uc *AskUseCase) answer(ctx context.Context, documentID, text, question, jurisdiction string) domain.QAResult {
	result := uc.answerer.Answer(text, question, uc.jurisdiction(jurisdiction))
	if uc.observer != nil {
		uc.observer.ObserveAnswer(result)
	}

	err := uc.history.Append(ctx, domain.ChatInteraction{
		DocumentID: documentID,
		Question:   question,
		Answer:     result.Answer,
		Confidence: result.Confidence,
	})
	if err != nil {
		uc.logger.Warn("history_append_failed", "document_id", documentID, "error", err)
	}
	return result
}

func (uc *AskUseCase) History(ctx context.Context, documentID string, limit int) ([]domain.ChatInteraction, error) {
	items, err := uc.history.List(ctx, documentID, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return items, nil
}

func (uc *AskUseCase) ClearHistory(ctx context.Context, documentID string) error {
	if err := uc.history.Clear(ctx, documentID); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

func (uc *AskUseCase) SuggestedQuestions(jurisdiction string) []string {
	return uc.answerer.SuggestedQuestions(uc.jurisdiction(jurisdiction))
}

func (uc *AskUseCase) jurisdiction(j string) string {
	if strings.TrimSpace(j) == "" {
		return uc.defaultJurisdiction
	}
	return j
}

func validateQuestion(question string) error {
	if strings.TrimSpace(question) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "validate question", errors.New("question is empty"))
	}
	return nil
}
