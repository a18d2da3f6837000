package usecase

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
	"github.com/kirillkom/legal-assistant/internal/core/ports"
)

var feedbackCSVHeader = []string{
	"id", "timestamp", "document_name", "feature", "rating", "comment",
	"suggestion", "user_correction", "ai_output", "expected_output", "session_id",
}

type FeedbackUseCase struct {
	store ports.FeedbackStore
}

func NewFeedbackUseCase(store ports.FeedbackStore) *FeedbackUseCase {
	return &FeedbackUseCase{store: store}
}

func (uc *FeedbackUseCase) Submit(ctx context.Context, fb domain.Feedback) (*domain.Feedback, error) {
	if err := fb.Validate(); err != nil {
		return nil, err
	}
	if err := uc.store.Add(ctx, &fb); err != nil {
		return nil, fmt.Errorf("store feedback: %w", err)
	}
	return &fb, nil
}

func (uc *FeedbackUseCase) List(ctx context.Context, filter domain.FeedbackFilter) ([]domain.Feedback, error) {
	if filter.Feature != "" && !filter.Feature.Valid() {
		return nil, domain.WrapError(domain.ErrInvalidInput, "list feedback", fmt.Errorf("unknown feature %q", filter.Feature))
	}
	return uc.store.List(ctx, filter)
}

func (uc *FeedbackUseCase) Stats(ctx context.Context) (domain.FeedbackStats, error) {
	return uc.store.Stats(ctx)
}

func (uc *FeedbackUseCase) ImprovementSuggestions(ctx context.Context) ([]domain.ImprovementSuggestion, error) {
	return uc.store.ImprovementSuggestions(ctx)
}

// Export writes every feedback record as "json" or "csv".
func (uc *FeedbackUseCase) Export(ctx context.Context, format string, w io.Writer) error {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != "json" && format != "csv" {
		return domain.WrapError(domain.ErrInvalidInput, "export feedback", fmt.Errorf("unsupported format %q", format))
	}

	items, err := uc.store.List(ctx, domain.FeedbackFilter{})
	if err != nil {
		return fmt.Errorf("list feedback: %w", err)
	}

	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(feedbackCSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, fb := range items {
		record := []string{
			strconv.FormatInt(fb.ID, 10),
			fb.Timestamp.UTC().Format(time.RFC3339),
			fb.DocumentName,
			string(fb.Feature),
			strconv.Itoa(fb.Rating),
			fb.Comment,
			fb.Suggestion,
			fb.UserCorrection,
			fb.AIOutput,
			fb.ExpectedOutput,
			fb.SessionID,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
