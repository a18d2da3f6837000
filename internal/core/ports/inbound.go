package ports

import (
	"context"
	"io"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
)

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

// DocumentReader is the inbound read model for document metadata/state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}

// DocumentProcessor is the inbound contract for asynchronous document processing.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// TextAnalyzer runs the full analysis pipeline over extracted text.
type TextAnalyzer interface {
	Analyze(ctx context.Context, documentID, text string) (*domain.DocumentAnalysis, error)
}

// AnalysisService serves synchronous analysis and stored analysis reads.
type AnalysisService interface {
	AnalyzeText(ctx context.Context, text string) (*domain.DocumentAnalysis, error)
	GetAnalysis(ctx context.Context, documentID string) (*domain.DocumentAnalysis, error)
}

// QuestionService answers questions and manages per-document chat history.
type QuestionService interface {
	Ask(ctx context.Context, documentID, question, jurisdiction string) (domain.QAResult, error)
	AskText(ctx context.Context, text, question, jurisdiction string) (domain.QAResult, error)
	History(ctx context.Context, documentID string, limit int) ([]domain.ChatInteraction, error)
	ClearHistory(ctx context.Context, documentID string) error
	SuggestedQuestions(jurisdiction string) []string
}

// FeedbackService collects and reports user feedback.
type FeedbackService interface {
	Submit(ctx context.Context, feedback domain.Feedback) (*domain.Feedback, error)
	List(ctx context.Context, filter domain.FeedbackFilter) ([]domain.Feedback, error)
	Stats(ctx context.Context) (domain.FeedbackStats, error)
	ImprovementSuggestions(ctx context.Context) ([]domain.ImprovementSuggestion, error)
	Export(ctx context.Context, format string, w io.Writer) error
}
