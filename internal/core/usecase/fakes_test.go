package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
)

type docRepoFake struct {
	mu        sync.Mutex
	docs      map[string]*domain.Document
	analyses  map[string]*domain.DocumentAnalysis
	statuses  []domain.DocumentStatus
	lastError string
	createErr error
	saveErr   error
}

func newDocRepoFake(docs ...*domain.Document) *docRepoFake {
	f := &docRepoFake{
		docs:     make(map[string]*domain.Document),
		analyses: make(map[string]*domain.DocumentAnalysis),
	}
	for _, d := range docs {
		f.docs[d.ID] = d
	}
	return f
}

func (f *docRepoFake) Create(_ context.Context, doc *domain.Document) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	copyDoc := *doc
	f.docs[doc.ID] = &copyDoc
	return nil
}

func (f *docRepoFake) GetByID(_ context.Context, id string) (*domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", errors.New(id))
	}
	copyDoc := *doc
	return &copyDoc, nil
}

func (f *docRepoFake) UpdateStatus(_ context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok {
		return domain.WrapError(domain.ErrDocumentNotFound, "update status", errors.New(id))
	}
	doc.Status = status
	doc.Error = errMessage
	f.statuses = append(f.statuses, status)
	f.lastError = errMessage
	return nil
}

func (f *docRepoFake) SaveAnalysis(_ context.Context, analysis *domain.DocumentAnalysis) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.analyses[analysis.DocumentID] = analysis
	return nil
}

func (f *docRepoFake) GetAnalysis(_ context.Context, id string) (*domain.DocumentAnalysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.analyses[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrDocumentNotFound, "get analysis", errors.New(id))
	}
	return a, nil
}

type storageFake struct {
	savedKey  string
	savedBody string
	err       error
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.err != nil {
		return f.err
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.savedKey = key
	f.savedBody = string(raw)
	return nil
}

func (f *storageFake) Open(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(f.savedBody)), nil
}

type queueFake struct {
	documentID string
	err        error
}

func (f *queueFake) PublishDocumentIngested(_ context.Context, documentID string) error {
	if f.err != nil {
		return f.err
	}
	f.documentID = documentID
	return nil
}

func (f *queueFake) SubscribeDocumentIngested(context.Context, func(context.Context, string) error) error {
	return errors.New("not implemented")
}

type formatsFake struct {
	allowed string
}

func (f formatsFake) Supports(filename, _ string) bool {
	return strings.HasSuffix(filename, f.allowed)
}

type extractorFake struct {
	text string
	err  error
}

func (f extractorFake) Extract(context.Context, *domain.Document) (string, error) {
	return f.text, f.err
}

type entitiesFake struct{}

func (entitiesFake) Extract(text string) domain.EntitySet {
	if !strings.Contains(text, "$") {
		return domain.EntitySet{}
	}
	return domain.EntitySet{"MONEY": {{Text: "$", Label: "MONEY", Confidence: 0.9, Source: domain.EntitySourcePattern}}}
}

type assessorFake struct {
	mu    sync.Mutex
	calls int
}

func (f *assessorFake) Assess(text string) domain.RiskAssessment {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return domain.RiskAssessment{OverallScore: 2, RiskLevel: domain.RiskLow, Summary: "assessed " + domain.DocumentFingerprint(text), Confidence: 0.8}
}

type summarizerFake struct {
	summary string
	err     error
}

func (f summarizerFake) Summarize(context.Context, string) (string, error) {
	return f.summary, f.err
}

type clausesFake struct{}

func (clausesFake) Clauses(text string) []string {
	return strings.Split(text, ";")
}

type cacheFake struct {
	entries map[string]domain.RiskAssessment
	getErr  error
	sets    int
}

func (f *cacheFake) Get(_ context.Context, key string) (*domain.RiskAssessment, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	a, ok := f.entries[key]
	if !ok {
		return nil, false, nil
	}
	return &a, true, nil
}

func (f *cacheFake) Set(_ context.Context, key string, a domain.RiskAssessment) error {
	f.sets++
	f.entries[key] = a
	return nil
}

type answererFake struct {
	lastText         string
	lastJurisdiction string
}

func (f *answererFake) Answer(text, question, jurisdiction string) domain.QAResult {
	f.lastText, f.lastJurisdiction = text, jurisdiction
	return domain.QAResult{Question: question, Answer: "answer to " + question, Confidence: 0.9, Sources: []string{"ctx"}, Intent: domain.IntentMoney}
}

func (f *answererFake) SuggestedQuestions(jurisdiction string) []string {
	f.lastJurisdiction = jurisdiction
	return []string{"q-" + jurisdiction}
}

type historyFake struct {
	items     []domain.ChatInteraction
	appendErr error
	cleared   string
}

func (f *historyFake) Append(_ context.Context, it domain.ChatInteraction) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.items = append(f.items, it)
	return nil
}

func (f *historyFake) List(_ context.Context, documentID string, _ int) ([]domain.ChatInteraction, error) {
	var out []domain.ChatInteraction
	for _, it := range f.items {
		if it.DocumentID == documentID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *historyFake) Clear(_ context.Context, documentID string) error {
	f.cleared = documentID
	return nil
}

type observerFake struct {
	assessments int
	answers     []domain.QAIntent
}

func (f *observerFake) ObserveAssessment(domain.RiskAssessment) {
	f.assessments++
}

func (f *observerFake) ObserveAnswer(r domain.QAResult) {
	f.answers = append(f.answers, r.Intent)
}
