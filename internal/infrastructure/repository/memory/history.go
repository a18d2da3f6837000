package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
)

// HistoryStore keeps chat history in process memory. It is lost on restart.
type HistoryStore struct {
	mu   sync.RWMutex
	logs map[string][]domain.ChatInteraction
}

func NewHistoryStore() *HistoryStore {
	return &HistoryStore{logs: make(map[string][]domain.ChatInteraction)}
}

func (s *HistoryStore) Append(_ context.Context, interaction domain.ChatInteraction) error {
	if interaction.ID == "" {
		interaction.ID = uuid.NewString()
	}
	if interaction.CreatedAt.IsZero() {
		interaction.CreatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs[interaction.DocumentID] = append(s.logs[interaction.DocumentID], interaction)
	return nil
}

func (s *HistoryStore) List(_ context.Context, documentID string, limit int) ([]domain.ChatInteraction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	log := s.logs[documentID]
	if limit > 0 && len(log) > limit {
		log = log[len(log)-limit:]
	}
	out := slices.Clone(log)
	if out == nil {
		out = []domain.ChatInteraction{}
	}
	return out, nil
}

func (s *HistoryStore) Clear(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.logs, documentID)
	return nil
}
