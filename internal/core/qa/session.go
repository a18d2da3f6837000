package qa

import (
	"errors"
	"sync"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
)

// Session holds one loaded document for a single conversation. Concurrent
// callers should each own a Session; the Engine underneath can be shared.
type Session struct {
	engine *Engine

	mu       sync.RWMutex
	loaded   bool
	text     string
	entities domain.EntitySet
}

func NewSession(engine *Engine) *Session {
	return &Session{engine: engine}
}

// Load replaces the current document and its entities.
func (s *Session) Load(text string, entities domain.EntitySet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = true
	s.text = text
	s.entities = entities.Clone()
}

func (s *Session) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Entities returns the entity context supplied with the current document.
func (s *Session) Entities() domain.EntitySet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entities.Clone()
}

// Answer fails with domain.ErrDocumentNotLoaded until Load has been called.
func (s *Session) Answer(question, jurisdiction string) (domain.QAResult, error) {
	s.mu.RLock()
	loaded, text := s.loaded, s.text
	s.mu.RUnlock()

	if !loaded {
		return domain.QAResult{}, domain.WrapError(domain.ErrDocumentNotLoaded, "answer question", errors.New("load a document first"))
	}
	return s.engine.Answer(text, question, jurisdiction), nil
}

func (s *Session) SuggestedQuestions(jurisdiction string) []string {
	return s.engine.SuggestedQuestions(jurisdiction)
}
