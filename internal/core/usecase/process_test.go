package usecase

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
)

func newAnalyzer(cache *cacheFake, observer *observerFake) (*AnalyzeTextUseCase, *assessorFake) {
	assessor := &assessorFake{}
	deps := AnalyzeDeps{
		Entities:   entitiesFake{},
		Assessor:   assessor,
		Summarizer: summarizerFake{summary: "short"},
		Clauses:    clausesFake{},
	}
	if cache != nil {
		deps.Cache = cache
	}
	if observer != nil {
		deps.Observer = observer
	}
	return NewAnalyzeTextUseCase(deps), assessor
}

func TestProcessByIDStoresAnalysisAndMarksReady(t *testing.T) {
	repo := newDocRepoFake(&domain.Document{ID: "doc-1", Filename: "lease.txt", Status: domain.StatusUploaded})
	analyzer, _ := newAnalyzer(nil, nil)
	uc := NewProcessDocumentUseCase(repo, extractorFake{text: "Rent is $500; due monthly."}, analyzer)

	if err := uc.ProcessByID(context.Background(), "doc-1"); err != nil {
		t.Fatalf("ProcessByID() error = %v", err)
	}
	if !slices.Equal(repo.statuses, []domain.DocumentStatus{domain.StatusProcessing, domain.StatusReady}) {
		t.Fatalf("unexpected status transitions: %v", repo.statuses)
	}
	analysis := repo.analyses["doc-1"]
	if analysis == nil {
		t.Fatalf("expected saved analysis")
	}
	if analysis.Summary != "short" || len(analysis.Clauses) != 2 || analysis.EntityStats.Total != 1 {
		t.Fatalf("unexpected analysis: %+v", analysis)
	}
}

func TestProcessByIDMarksFailedOnEmptyText(t *testing.T) {
	repo := newDocRepoFake(&domain.Document{ID: "doc-1", Status: domain.StatusUploaded})
	analyzer, _ := newAnalyzer(nil, nil)
	uc := NewProcessDocumentUseCase(repo, extractorFake{text: ""}, analyzer)

	err := uc.ProcessByID(context.Background(), "doc-1")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if repo.statuses[len(repo.statuses)-1] != domain.StatusFailed {
		t.Fatalf("expected failed status, got %v", repo.statuses)
	}
	if repo.lastError == "" {
		t.Fatalf("failure reason must be recorded")
	}
}

func TestProcessByIDMarksFailedWhenSaveFails(t *testing.T) {
	repo := newDocRepoFake(&domain.Document{ID: "doc-1", Status: domain.StatusUploaded})
	repo.saveErr = errors.New("db down")
	analyzer, _ := newAnalyzer(nil, nil)
	uc := NewProcessDocumentUseCase(repo, extractorFake{text: "text"}, analyzer)

	if err := uc.ProcessByID(context.Background(), "doc-1"); err == nil {
		t.Fatalf("expected error")
	}
	if repo.docs["doc-1"].Status != domain.StatusFailed {
		t.Fatalf("expected failed status, got %s", repo.docs["doc-1"].Status)
	}
}

func TestProcessByIDMissingDocument(t *testing.T) {
	analyzer, _ := newAnalyzer(nil, nil)
	uc := NewProcessDocumentUseCase(newDocRepoFake(), extractorFake{text: "x"}, analyzer)

	if err := uc.ProcessByID(context.Background(), "missing"); !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
