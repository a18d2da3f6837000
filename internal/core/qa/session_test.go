package qa

import (
	"errors"
	"sync"
	"testing"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
)

func TestSessionAnswerBeforeLoad(t *testing.T) {
	s := NewSession(newTestEngine(t))

	_, err := s.Answer("What is the contract value?", "International")
	if !errors.Is(err, domain.ErrDocumentNotLoaded) {
		t.Fatalf("expected ErrDocumentNotLoaded, got %v", err)
	}
	if s.Loaded() {
		t.Fatalf("session must not report a loaded document")
	}
}

func TestSessionLoadReplacesDocument(t *testing.T) {
	s := NewSession(newTestEngine(t))

	s.Load("The fee is $500 payable on signing.", domain.EntitySet{
		"MONEY": {{Text: "$500", Label: "MONEY", Start: 11, End: 15, Confidence: 0.9}},
	})
	res, err := s.Answer("What is the contract value?", "International")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if !res.Found() {
		t.Fatalf("expected amount from first document, got %+v", res)
	}

	s.Load("The parties agree to cooperate in good faith.", nil)
	res, err = s.Answer("What is the contract value?", "International")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if res.Answer != "No monetary amounts found in the document." || res.Context != "" || len(res.Sources) != 0 {
		t.Fatalf("first document leaked into answer: %+v", res)
	}
	if got := s.Entities().Count(); got != 0 {
		t.Fatalf("expected entities to be replaced, got %d", got)
	}
}

func TestSessionEntitiesAreCopied(t *testing.T) {
	s := NewSession(newTestEngine(t))
	entities := domain.EntitySet{"PARTIES": {domain.PlainEntity("PARTIES", "Acme Inc")}}

	s.Load("Acme Inc sells widgets.", entities)
	entities["PARTIES"][0].Text = "changed"

	if got := s.Entities()["PARTIES"][0].Text; got != "Acme Inc" {
		t.Fatalf("session entities were mutated through caller map: %q", got)
	}
}

func TestSessionConcurrentReaders(t *testing.T) {
	s := NewSession(newTestEngine(t))
	s.Load("Either party may terminate upon 30 days notice.", nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.Answer("Can either side cancel early?", "")
			if err != nil || res.Answer != "Found termination terms: 30 days" {
				t.Errorf("unexpected result: %+v, %v", res, err)
			}
		}()
	}
	wg.Wait()
}
