package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
)

func TestAnalyzeTextUsesFingerprintAsID(t *testing.T) {
	uc, _ := newAnalyzer(nil, nil)

	got, err := uc.AnalyzeText(context.Background(), "  Fee is $10; net 30.  ")
	if err != nil {
		t.Fatalf("AnalyzeText() error = %v", err)
	}
	if got.DocumentID != domain.DocumentFingerprint("Fee is $10; net 30.") {
		t.Fatalf("unexpected document id %q", got.DocumentID)
	}
	if got.Risk.RiskLevel != domain.RiskLow {
		t.Fatalf("unexpected analysis: %+v", got)
	}
}

func TestAnalyzeRejectsBlankText(t *testing.T) {
	uc, _ := newAnalyzer(nil, nil)
	if _, err := uc.AnalyzeText(context.Background(), " \n "); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestAnalyzeKeepsFullTextForEngines(t *testing.T) {
	uc := NewAnalyzeTextUseCase(AnalyzeDeps{
		Entities:   entitiesFake{},
		Assessor:   &assessorFake{},
		Summarizer: summarizerFake{summary: "s"},
		Clauses:    clausesFake{},
	})
	text := strings.Repeat("The parties agree to the schedule. ", 3000) + "The fee is $500."

	got, err := uc.Analyze(context.Background(), "doc", text)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if got.Text != text {
		t.Fatalf("stored text was shortened to %d bytes", len(got.Text))
	}
	if got.Risk.Summary != "assessed "+domain.DocumentFingerprint(text) {
		t.Fatalf("assessor did not see the full text: %q", got.Risk.Summary)
	}
	if len(got.Entities["MONEY"]) != 1 {
		t.Fatalf("entity at the end of the text was lost: %+v", got.Entities)
	}
}

func TestAnalyzeServesAssessmentFromCache(t *testing.T) {
	cache := &cacheFake{entries: map[string]domain.RiskAssessment{}}
	observer := &observerFake{}
	uc, assessor := newAnalyzer(cache, observer)

	for range 2 {
		if _, err := uc.Analyze(context.Background(), "doc", "same text"); err != nil {
			t.Fatalf("Analyze() error = %v", err)
		}
	}
	if assessor.calls != 1 {
		t.Fatalf("expected one assessment, got %d", assessor.calls)
	}
	if cache.sets != 1 {
		t.Fatalf("expected one cache write, got %d", cache.sets)
	}
	if _, ok := cache.entries[domain.ContentHash("same text")]; !ok {
		t.Fatalf("cache must be keyed by content hash")
	}
	if observer.assessments != 2 {
		t.Fatalf("cached assessments must still be observed, got %d", observer.assessments)
	}
}

func TestAnalyzeFallsBackWhenCacheFails(t *testing.T) {
	cache := &cacheFake{entries: map[string]domain.RiskAssessment{}, getErr: errors.New("redis down")}
	uc, assessor := newAnalyzer(cache, nil)

	if _, err := uc.Analyze(context.Background(), "doc", "text"); err != nil {
		t.Fatalf("cache errors must not fail analysis: %v", err)
	}
	if assessor.calls != 1 {
		t.Fatalf("expected direct assessment, got %d calls", assessor.calls)
	}
}

func TestAnalyzeKeepsGoingWhenSummaryFails(t *testing.T) {
	uc := NewAnalyzeTextUseCase(AnalyzeDeps{
		Entities:   entitiesFake{},
		Assessor:   &assessorFake{},
		Summarizer: summarizerFake{err: errors.New("model down")},
		Clauses:    clausesFake{},
	})

	got, err := uc.Analyze(context.Background(), "doc", "text")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if got.Summary != "" {
		t.Fatalf("expected empty summary, got %q", got.Summary)
	}
}

func TestGetAnalysisRequiresReadyDocument(t *testing.T) {
	repo := newDocRepoFake(
		&domain.Document{ID: "pending", Status: domain.StatusProcessing},
		&domain.Document{ID: "broken", Status: domain.StatusFailed, Error: "extract text: bad pdf"},
		&domain.Document{ID: "ready", Status: domain.StatusReady},
	)
	repo.analyses["ready"] = &domain.DocumentAnalysis{DocumentID: "ready", Summary: "ok"}
	uc := NewAnalyzeTextUseCase(AnalyzeDeps{Repo: repo})

	if _, err := uc.GetAnalysis(context.Background(), "pending"); !domain.IsKind(err, domain.ErrDocumentNotReady) {
		t.Fatalf("expected not ready, got %v", err)
	}
	_, err := uc.GetAnalysis(context.Background(), "broken")
	if !domain.IsKind(err, domain.ErrDocumentNotReady) || !strings.Contains(err.Error(), "bad pdf") {
		t.Fatalf("expected not ready with reason, got %v", err)
	}
	if _, err := uc.GetAnalysis(context.Background(), "missing"); !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	got, err := uc.GetAnalysis(context.Background(), "ready")
	if err != nil || got.Summary != "ok" {
		t.Fatalf("GetAnalysis() = %+v, %v", got, err)
	}
}
