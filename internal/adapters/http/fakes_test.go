package httpadapter

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/kirillkom/legal-assistant/internal/config"
	"github.com/kirillkom/legal-assistant/internal/core/domain"
)

type ingestFake struct {
	err error
}

func (f ingestFake) Upload(_ context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload", io.EOF)
	}

	now := time.Now().UTC()
	return &domain.Document{
		ID:          "doc-1",
		Filename:    filename,
		MimeType:    mimeType,
		StoragePath: "doc-1_" + filename,
		SizeBytes:   int64(len(raw)),
		Status:      domain.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

type docsFake struct {
	err error
}

func (f docsFake) GetByID(_ context.Context, id string) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Document{ID: id, Filename: "nda.txt", MimeType: "text/plain", StoragePath: "nda.txt", Status: domain.StatusReady}, nil
}

type analysisFake struct {
	err      error
	lastText string
}

func (f *analysisFake) AnalyzeText(_ context.Context, text string) (*domain.DocumentAnalysis, error) {
	f.lastText = text
	if f.err != nil {
		return nil, f.err
	}
	return &domain.DocumentAnalysis{
		DocumentID: domain.DocumentFingerprint(text),
		Summary:    "summary",
		Risk:       domain.RiskAssessment{OverallScore: 2, RiskLevel: domain.RiskLow},
	}, nil
}

func (f *analysisFake) GetAnalysis(_ context.Context, id string) (*domain.DocumentAnalysis, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.DocumentAnalysis{DocumentID: id, Summary: "summary"}, nil
}

type questionsFake struct {
	err          error
	jurisdiction string
	cleared      string
	historyLimit int
}

func (f *questionsFake) Ask(_ context.Context, documentID, question, jurisdiction string) (domain.QAResult, error) {
	f.jurisdiction = jurisdiction
	if f.err != nil {
		return domain.QAResult{}, f.err
	}
	return domain.QAResult{Question: question, Answer: "answer for " + documentID, Confidence: 0.8, Intent: domain.IntentGeneral}, nil
}

func (f *questionsFake) AskText(_ context.Context, text, question, jurisdiction string) (domain.QAResult, error) {
	f.jurisdiction = jurisdiction
	if f.err != nil {
		return domain.QAResult{}, f.err
	}
	if text == "" {
		return domain.QAResult{}, domain.WrapError(domain.ErrDocumentNotLoaded, "ask text", errors.New("empty text"))
	}
	return domain.QAResult{Question: question, Answer: "The amounts mentioned are: $5,000", Confidence: 0.8, Sources: []string{"$5,000"}, Intent: domain.IntentMoney}, nil
}

func (f *questionsFake) History(_ context.Context, documentID string, limit int) ([]domain.ChatInteraction, error) {
	f.historyLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return []domain.ChatInteraction{{ID: "m-1", DocumentID: documentID, Question: "q", Answer: "a"}}, nil
}

func (f *questionsFake) ClearHistory(_ context.Context, documentID string) error {
	f.cleared = documentID
	return f.err
}

func (f *questionsFake) SuggestedQuestions(jurisdiction string) []string {
	f.jurisdiction = jurisdiction
	return []string{"Who are the parties?", "What is the governing law?"}
}

type feedbackFake struct {
	err    error
	filter domain.FeedbackFilter
}

func (f *feedbackFake) Submit(_ context.Context, fb domain.Feedback) (*domain.Feedback, error) {
	if f.err != nil {
		return nil, f.err
	}
	if err := fb.Validate(); err != nil {
		return nil, err
	}
	fb.ID = 7
	return &fb, nil
}

func (f *feedbackFake) List(_ context.Context, filter domain.FeedbackFilter) ([]domain.Feedback, error) {
	f.filter = filter
	return []domain.Feedback{{ID: 1, Feature: domain.FeatureQASystem, Rating: 4, DocumentName: "nda.txt"}}, f.err
}

func (f *feedbackFake) Stats(context.Context) (domain.FeedbackStats, error) {
	return domain.FeedbackStats{TotalFeedback: 3, AverageRating: 4}, f.err
}

func (f *feedbackFake) ImprovementSuggestions(context.Context) ([]domain.ImprovementSuggestion, error) {
	return nil, f.err
}

func (f *feedbackFake) Export(_ context.Context, format string, w io.Writer) error {
	if format != "json" && format != "csv" {
		return domain.WrapError(domain.ErrInvalidInput, "export feedback", errors.New("bad format"))
	}
	_, err := io.WriteString(w, "id,rating\n1,4\n")
	return err
}

type testServices struct {
	ingest    ingestFake
	docs      docsFake
	analysis  *analysisFake
	questions *questionsFake
	feedback  *feedbackFake
}

func newTestServices() *testServices {
	return &testServices{
		analysis:  &analysisFake{},
		questions: &questionsFake{},
		feedback:  &feedbackFake{},
	}
}

func (s *testServices) handler(cfg config.Config) http.Handler {
	if cfg.MaxUploadMB == 0 {
		cfg.MaxUploadMB = 1
	}
	if cfg.MaxTextChars == 0 {
		cfg.MaxTextChars = 1000
	}
	return NewRouter(cfg, Services{
		Ingestor:  s.ingest,
		Documents: s.docs,
		Analysis:  s.analysis,
		Questions: s.questions,
		Feedback:  s.feedback,
	}, nil).Handler()
}

func newTestHandler(cfg config.Config) http.Handler {
	return newTestServices().handler(cfg)
}
