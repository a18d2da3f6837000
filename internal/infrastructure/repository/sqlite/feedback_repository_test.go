package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
)

var fixedNow = time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)

func newRepo(t *testing.T) *FeedbackRepository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "feedback.db"), WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func add(t *testing.T, repo *FeedbackRepository, fb domain.Feedback) domain.Feedback {
	t.Helper()
	require.NoError(t, repo.Add(context.Background(), &fb))
	return fb
}

func TestAddAssignsIDAndTimestamp(t *testing.T) {
	repo := newRepo(t)

	fb := add(t, repo, domain.Feedback{DocumentName: "nda.pdf", Feature: domain.FeatureRiskAssessment, Rating: 4})
	assert.Equal(t, int64(1), fb.ID)
	assert.Equal(t, fixedNow, fb.Timestamp)

	got, err := repo.List(context.Background(), domain.FeedbackFilter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, fb, got[0])
}

func TestListFiltersAndOrdersNewestFirst(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	add(t, repo, domain.Feedback{DocumentName: "a", Feature: domain.FeatureQASystem, Rating: 2, Timestamp: fixedNow.Add(-2 * time.Hour)})
	add(t, repo, domain.Feedback{DocumentName: "b", Feature: domain.FeatureQASystem, Rating: 5, Timestamp: fixedNow.Add(-time.Hour)})
	add(t, repo, domain.Feedback{DocumentName: "c", Feature: domain.FeatureSummarization, Rating: 4, Timestamp: fixedNow})

	all, err := repo.List(ctx, domain.FeedbackFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{all[0].DocumentName, all[1].DocumentName, all[2].DocumentName})

	qa, err := repo.List(ctx, domain.FeedbackFilter{Feature: domain.FeatureQASystem, MinRating: 3})
	require.NoError(t, err)
	require.Len(t, qa, 1)
	assert.Equal(t, "b", qa[0].DocumentName)

	limited, err := repo.List(ctx, domain.FeedbackFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestStats(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	add(t, repo, domain.Feedback{DocumentName: "a", Feature: domain.FeatureQASystem, Rating: 2, Timestamp: fixedNow})
	add(t, repo, domain.Feedback{DocumentName: "a", Feature: domain.FeatureQASystem, Rating: 5, Timestamp: fixedNow.Add(-24 * time.Hour)})
	add(t, repo, domain.Feedback{DocumentName: "a", Feature: domain.FeatureRiskAssessment, Rating: 4, Timestamp: fixedNow})
	add(t, repo, domain.Feedback{DocumentName: "old", Feature: domain.FeatureRiskAssessment, Rating: 1, Timestamp: fixedNow.Add(-40 * 24 * time.Hour)})

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 4, stats.TotalFeedback)
	assert.Equal(t, 3.0, stats.AverageRating)
	assert.Equal(t, domain.FeatureStats{Count: 2, AvgRating: 3.5, MinRating: 2, MaxRating: 5}, stats.ByFeature[domain.FeatureQASystem])
	assert.Equal(t, domain.FeatureStats{Count: 2, AvgRating: 2.5, MinRating: 1, MaxRating: 4}, stats.ByFeature[domain.FeatureRiskAssessment])
	assert.Equal(t, []domain.DailyFeedback{
		{Date: "2026-05-20", Count: 2, AvgRating: 3},
		{Date: "2026-05-19", Count: 1, AvgRating: 5},
	}, stats.RecentTrends)
}

func TestStatsOnEmptyStore(t *testing.T) {
	stats, err := newRepo(t).Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalFeedback)
	assert.Zero(t, stats.AverageRating)
	assert.Empty(t, stats.ByFeature)
	assert.Empty(t, stats.RecentTrends)
}

func TestImprovementSuggestions(t *testing.T) {
	repo := newRepo(t)

	add(t, repo, domain.Feedback{DocumentName: "a", Feature: domain.FeatureEntityExtraction, Rating: 2, Suggestion: "Detect GBP"})
	add(t, repo, domain.Feedback{DocumentName: "a", Feature: domain.FeatureQASystem, Rating: 3, UserCorrection: "Term is 2 years"})
	add(t, repo, domain.Feedback{DocumentName: "a", Feature: domain.FeatureEntityExtraction, Rating: 5, Suggestion: "ignored: rated high"})
	add(t, repo, domain.Feedback{DocumentName: "a", Feature: domain.FeatureEntityExtraction, Rating: 1, Suggestion: "Parties", UserCorrection: "Acme Ltd"})

	got, err := repo.ImprovementSuggestions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.ImprovementSuggestion{
		{Feature: domain.FeatureEntityExtraction, Notes: []string{"Suggestion: Detect GBP", "Suggestion: Parties", "Correction: Acme Ltd"}},
		{Feature: domain.FeatureQASystem, Notes: []string{"Correction: Term is 2 years"}},
	}, got)
}
