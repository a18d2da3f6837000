package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

type FeedbackFeature string

const (
	FeatureOverallAnalysis  FeedbackFeature = "overall_analysis"
	FeatureEntityExtraction FeedbackFeature = "entity_extraction"
	FeatureRiskAssessment   FeedbackFeature = "risk_assessment"
	FeatureQASystem         FeedbackFeature = "qa_system"
	FeatureSummarization    FeedbackFeature = "summarization"
	FeatureClauseExtraction FeedbackFeature = "clause_extraction"
)

var feedbackFeatures = []FeedbackFeature{
	FeatureOverallAnalysis,
	FeatureEntityExtraction,
	FeatureRiskAssessment,
	FeatureQASystem,
	FeatureSummarization,
	FeatureClauseExtraction,
}

func (f FeedbackFeature) Valid() bool {
	return slices.Contains(feedbackFeatures, f)
}

type Feedback struct {
	ID             int64           `json:"id"`
	Timestamp      time.Time       `json:"timestamp"`
	DocumentName   string          `json:"document_name"`
	Feature        FeedbackFeature `json:"feature"`
	Rating         int             `json:"rating"`
	Comment        string          `json:"comment,omitempty"`
	Suggestion     string          `json:"suggestion,omitempty"`
	UserCorrection string          `json:"user_correction,omitempty"`
	AIOutput       string          `json:"ai_output,omitempty"`
	ExpectedOutput string          `json:"expected_output,omitempty"`
	SessionID      string          `json:"session_id,omitempty"`
}

func (f Feedback) Validate() error {
	if !f.Feature.Valid() {
		return WrapError(ErrInvalidInput, "validate feedback", fmt.Errorf("unknown feature %q", f.Feature))
	}
	if f.Rating < 1 || f.Rating > 5 {
		return WrapError(ErrInvalidInput, "validate feedback", fmt.Errorf("rating %d outside 1..5", f.Rating))
	}
	if strings.TrimSpace(f.DocumentName) == "" {
		return WrapError(ErrInvalidInput, "validate feedback", fmt.Errorf("document name is required"))
	}
	return nil
}

type FeedbackFilter struct {
	Feature   FeedbackFeature
	MinRating int
	Limit     int
}

type FeatureStats struct {
	Count     int     `json:"count"`
	AvgRating float64 `json:"avg_rating"`
	MinRating int     `json:"min_rating"`
	MaxRating int     `json:"max_rating"`
}

type DailyFeedback struct {
	Date      string  `json:"date"`
	Count     int     `json:"count"`
	AvgRating float64 `json:"avg_rating"`
}

type FeedbackStats struct {
	TotalFeedback int                              `json:"total_feedback"`
	AverageRating float64                          `json:"average_rating"`
	ByFeature     map[FeedbackFeature]FeatureStats `json:"feature_stats"`
	RecentTrends  []DailyFeedback                  `json:"recent_trends"`
}

// ImprovementSuggestion groups low-rated feedback notes by feature.
type ImprovementSuggestion struct {
	Feature FeedbackFeature `json:"feature"`
	Notes   []string        `json:"notes"`
}
