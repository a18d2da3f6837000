package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
)

// Timestamps are stored in SQLite's own text layout so DATE() and string
// comparison both work.
const timeLayout = "2006-01-02 15:04:05.000"

const trendWindow = 30 * 24 * time.Hour

type FeedbackRepository struct {
	db  *sql.DB
	now func() time.Time
}

type Option func(*FeedbackRepository)

func WithClock(now func() time.Time) Option {
	return func(r *FeedbackRepository) {
		if now != nil {
			r.now = now
		}
	}
}

// Open creates the database file and schema when missing.
func Open(path string, opts ...Option) (*FeedbackRepository, error) {
	if path == "" {
		path = "./data/feedback.db"
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create feedback dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open feedback db: %w", err)
	}
	db.SetMaxOpenConns(1)

	r := &FeedbackRepository{db: db, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *FeedbackRepository) Close() error {
	return r.db.Close()
}

func (r *FeedbackRepository) ensureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS feedback (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp TEXT NOT NULL,
	document_name TEXT NOT NULL DEFAULT '',
	feature TEXT NOT NULL,
	rating INTEGER NOT NULL,
	comment TEXT NOT NULL DEFAULT '',
	suggestion TEXT NOT NULL DEFAULT '',
	user_correction TEXT NOT NULL DEFAULT '',
	ai_output TEXT NOT NULL DEFAULT '',
	expected_output TEXT NOT NULL DEFAULT '',
	session_id TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_feedback_feature ON feedback(feature);
CREATE INDEX IF NOT EXISTS idx_feedback_timestamp ON feedback(timestamp);
`)
	if err != nil {
		return fmt.Errorf("create feedback schema: %w", err)
	}
	return nil
}

// Add stores the feedback and fills in its id and timestamp.
func (r *FeedbackRepository) Add(ctx context.Context, fb *domain.Feedback) error {
	if fb.Timestamp.IsZero() {
		fb.Timestamp = r.now()
	}
	fb.Timestamp = fb.Timestamp.UTC().Truncate(time.Millisecond)

	res, err := r.db.ExecContext(ctx, `
INSERT INTO feedback (
	timestamp, document_name, feature, rating, comment, suggestion, user_correction, ai_output, expected_output, session_id
) VALUES (?,?,?,?,?,?,?,?,?,?)
`,
		fb.Timestamp.Format(timeLayout), fb.DocumentName, string(fb.Feature), fb.Rating, fb.Comment,
		fb.Suggestion, fb.UserCorrection, fb.AIOutput, fb.ExpectedOutput, fb.SessionID,
	)
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("feedback id: %w", err)
	}
	fb.ID = id
	return nil
}

// List returns feedback newest first.
func (r *FeedbackRepository) List(ctx context.Context, filter domain.FeedbackFilter) ([]domain.Feedback, error) {
	var (
		where []string
		args  []any
	)
	if filter.Feature != "" {
		where = append(where, "feature = ?")
		args = append(args, string(filter.Feature))
	}
	if filter.MinRating > 0 {
		where = append(where, "rating >= ?")
		args = append(args, filter.MinRating)
	}

	query := `
SELECT id, timestamp, document_name, feature, rating, comment, suggestion, user_correction, ai_output, expected_output, session_id
FROM feedback`
	if len(where) > 0 {
		query += "\nWHERE " + strings.Join(where, " AND ")
	}
	query += "\nORDER BY timestamp DESC, id DESC"
	if filter.Limit > 0 {
		query += "\nLIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Feedback, 0)
	for rows.Next() {
		var fb domain.Feedback
		var ts, feature string
		if err := rows.Scan(
			&fb.ID, &ts, &fb.DocumentName, &feature, &fb.Rating, &fb.Comment,
			&fb.Suggestion, &fb.UserCorrection, &fb.AIOutput, &fb.ExpectedOutput, &fb.SessionID,
		); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		fb.Feature = domain.FeedbackFeature(feature)
		fb.Timestamp, err = time.Parse(timeLayout, ts)
		if err != nil {
			return nil, fmt.Errorf("parse feedback timestamp %q: %w", ts, err)
		}
		out = append(out, fb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feedback: %w", err)
	}
	return out, nil
}

func (r *FeedbackRepository) Stats(ctx context.Context) (domain.FeedbackStats, error) {
	stats := domain.FeedbackStats{
		ByFeature:    make(map[domain.FeedbackFeature]domain.FeatureStats),
		RecentTrends: make([]domain.DailyFeedback, 0),
	}

	var avg sql.NullFloat64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*), AVG(rating) FROM feedback`).Scan(&stats.TotalFeedback, &avg); err != nil {
		return domain.FeedbackStats{}, fmt.Errorf("feedback totals: %w", err)
	}
	stats.AverageRating = round2(avg.Float64)

	rows, err := r.db.QueryContext(ctx, `
SELECT feature, COUNT(*), AVG(rating), MIN(rating), MAX(rating)
FROM feedback
GROUP BY feature
`)
	if err != nil {
		return domain.FeedbackStats{}, fmt.Errorf("feedback by feature: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var feature string
		var fs domain.FeatureStats
		if err := rows.Scan(&feature, &fs.Count, &fs.AvgRating, &fs.MinRating, &fs.MaxRating); err != nil {
			return domain.FeedbackStats{}, fmt.Errorf("scan feature stats: %w", err)
		}
		fs.AvgRating = round2(fs.AvgRating)
		stats.ByFeature[domain.FeedbackFeature(feature)] = fs
	}
	if err := rows.Err(); err != nil {
		return domain.FeedbackStats{}, fmt.Errorf("iterate feature stats: %w", err)
	}

	since := r.now().UTC().Add(-trendWindow).Format(timeLayout)
	trendRows, err := r.db.QueryContext(ctx, `
SELECT DATE(timestamp) AS day, COUNT(*), AVG(rating)
FROM feedback
WHERE timestamp >= ?
GROUP BY day
ORDER BY day DESC
`, since)
	if err != nil {
		return domain.FeedbackStats{}, fmt.Errorf("feedback trends: %w", err)
	}
	defer trendRows.Close()
	for trendRows.Next() {
		var day domain.DailyFeedback
		if err := trendRows.Scan(&day.Date, &day.Count, &day.AvgRating); err != nil {
			return domain.FeedbackStats{}, fmt.Errorf("scan trend: %w", err)
		}
		day.AvgRating = round2(day.AvgRating)
		stats.RecentTrends = append(stats.RecentTrends, day)
	}
	if err := trendRows.Err(); err != nil {
		return domain.FeedbackStats{}, fmt.Errorf("iterate trends: %w", err)
	}
	return stats, nil
}

// ImprovementSuggestions collects suggestions and corrections from feedback
// rated 3 or lower, grouped by feature in first-seen order.
func (r *FeedbackRepository) ImprovementSuggestions(ctx context.Context) ([]domain.ImprovementSuggestion, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT feature, suggestion, user_correction
FROM feedback
WHERE rating <= 3 AND (suggestion != '' OR user_correction != '')
ORDER BY id
`)
	if err != nil {
		return nil, fmt.Errorf("improvement suggestions: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ImprovementSuggestion, 0)
	index := make(map[string]int)
	for rows.Next() {
		var feature, suggestion, correction string
		if err := rows.Scan(&feature, &suggestion, &correction); err != nil {
			return nil, fmt.Errorf("scan suggestion: %w", err)
		}
		i, ok := index[feature]
		if !ok {
			i = len(out)
			index[feature] = i
			out = append(out, domain.ImprovementSuggestion{Feature: domain.FeedbackFeature(feature)})
		}
		if suggestion != "" {
			out[i].Notes = append(out[i].Notes, "Suggestion: "+suggestion)
		}
		if correction != "" {
			out[i].Notes = append(out[i].Notes, "Correction: "+correction)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate suggestions: %w", err)
	}
	return out, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
