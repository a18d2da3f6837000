package ports

import (
	"context"
	"io"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
)

// DocumentRepository persists document state and analysis results.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	SaveAnalysis(ctx context.Context, analysis *domain.DocumentAnalysis) error
	GetAnalysis(ctx context.Context, documentID string) (*domain.DocumentAnalysis, error)
}

// ObjectStorage stores source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes ingestion events.
type MessageQueue interface {
	PublishDocumentIngested(ctx context.Context, documentID string) error
	SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error
}

// TextExtractor extracts plain text from a stored document.
type TextExtractor interface {
	Extract(ctx context.Context, doc *domain.Document) (string, error)
}

// SentenceSegmenter splits text into sentences carrying byte offsets.
type SentenceSegmenter interface {
	Sentences(text string) []domain.Sentence
}

// ClauseSplitter splits text into individual clauses.
type ClauseSplitter interface {
	Clauses(text string) []string
}

// Chunker splits text into overlapping clause windows.
type Chunker interface {
	Split(text string) []string
}

// EntityExtractor tags legal entities in text.
type EntityExtractor interface {
	Extract(text string) domain.EntitySet
}

// Summarizer produces a short narrative of the document.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// RiskAssessor scores the risk profile of a document.
type RiskAssessor interface {
	Assess(text string) domain.RiskAssessment
}

// QuestionAnswerer answers questions against a document passed per call.
type QuestionAnswerer interface {
	Answer(text, question, jurisdiction string) domain.QAResult
	SuggestedQuestions(jurisdiction string) []string
}

// AssessmentCache memoizes risk assessments by content key.
type AssessmentCache interface {
	Get(ctx context.Context, key string) (*domain.RiskAssessment, bool, error)
	Set(ctx context.Context, key string, assessment domain.RiskAssessment) error
}

// ChatHistoryStore keeps the per-document question/answer log.
type ChatHistoryStore interface {
	Append(ctx context.Context, interaction domain.ChatInteraction) error
	List(ctx context.Context, documentID string, limit int) ([]domain.ChatInteraction, error)
	Clear(ctx context.Context, documentID string) error
}

// FeedbackStore persists user ratings of analysis output.
type FeedbackStore interface {
	Add(ctx context.Context, feedback *domain.Feedback) error
	List(ctx context.Context, filter domain.FeedbackFilter) ([]domain.Feedback, error)
	Stats(ctx context.Context) (domain.FeedbackStats, error)
	ImprovementSuggestions(ctx context.Context) ([]domain.ImprovementSuggestion, error)
}

// FormatSupport reports whether an upload type can be turned into text.
type FormatSupport interface {
	Supports(filename, mimeType string) bool
}

// AnalysisObserver receives engine outcomes, typically for metrics.
type AnalysisObserver interface {
	ObserveAssessment(assessment domain.RiskAssessment)
	ObserveAnswer(result domain.QAResult)
}
