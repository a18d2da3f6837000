package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
)

// HistoryRepository is the append-only question log per document.
type HistoryRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) Append(ctx context.Context, interaction domain.ChatInteraction) error {
	if interaction.ID == "" {
		interaction.ID = uuid.NewString()
	}
	if interaction.CreatedAt.IsZero() {
		interaction.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO chat_interactions (id, document_id, question, answer, confidence, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
`, interaction.ID, interaction.DocumentID, interaction.Question, interaction.Answer, interaction.Confidence, interaction.CreatedAt)
	if err != nil {
		return fmt.Errorf("append interaction: %w", err)
	}
	return nil
}

// List returns the newest limit interactions in chronological order; limit <= 0
// returns all of them.
func (r *HistoryRepository) List(ctx context.Context, documentID string, limit int) ([]domain.ChatInteraction, error) {
	var limitArg any
	if limit > 0 {
		limitArg = limit
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, document_id, question, answer, confidence, created_at
FROM chat_interactions
WHERE document_id = $1
ORDER BY created_at DESC
LIMIT $2
`, documentID, limitArg)
	if err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ChatInteraction, 0)
	for rows.Next() {
		var it domain.ChatInteraction
		if err := rows.Scan(&it.ID, &it.DocumentID, &it.Question, &it.Answer, &it.Confidence, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interactions: %w", err)
	}

	slices.Reverse(out)
	return out, nil
}

func (r *HistoryRepository) Clear(ctx context.Context, documentID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM chat_interactions WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("clear interactions: %w", err)
	}
	return nil
}
