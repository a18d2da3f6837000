package domain

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

type RiskCategory string

const (
	CategoryLiability            RiskCategory = "liability"
	CategoryFinancial            RiskCategory = "financial"
	CategoryCompliance           RiskCategory = "compliance"
	CategoryOperational          RiskCategory = "operational"
	CategoryIntellectualProperty RiskCategory = "intellectual_property"
	CategoryConfidentiality      RiskCategory = "confidentiality"
	CategoryTermination          RiskCategory = "termination"
	CategoryDisputeResolution    RiskCategory = "dispute_resolution"
)

var riskCategories = []RiskCategory{
	CategoryLiability,
	CategoryFinancial,
	CategoryCompliance,
	CategoryOperational,
	CategoryIntellectualProperty,
	CategoryConfidentiality,
	CategoryTermination,
	CategoryDisputeResolution,
}

// RiskCategories returns every known category in canonical order.
func RiskCategories() []RiskCategory {
	return slices.Clone(riskCategories)
}

func (c RiskCategory) Valid() bool {
	return slices.Contains(riskCategories, c)
}

func ParseRiskCategory(raw string) (RiskCategory, error) {
	c := RiskCategory(raw)
	if !c.Valid() {
		return "", WrapError(ErrInvalidInput, "parse risk category", fmt.Errorf("unknown category %q", raw))
	}
	return c, nil
}

// RiskLevel is ordered by severity: low < medium < high < critical.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Rank returns the severity rank of the level, or -1 for unknown levels.
func (l RiskLevel) Rank() int {
	switch l {
	case RiskLow:
		return 0
	case RiskMedium:
		return 1
	case RiskHigh:
		return 2
	case RiskCritical:
		return 3
	default:
		return -1
	}
}

func (l RiskLevel) Valid() bool {
	return l.Rank() >= 0
}

// LevelForScore maps a normalized score to a level; thresholds are inclusive.
func LevelForScore(score float64) RiskLevel {
	switch {
	case score >= 8.0:
		return RiskCritical
	case score >= 6.0:
		return RiskHigh
	case score >= 4.0:
		return RiskMedium
	default:
		return RiskLow
	}
}

const MaxAssessmentRecommendations = 10

type RiskFactor struct {
	Text                 string       `json:"text"`
	Category             RiskCategory `json:"category"`
	Level                RiskLevel    `json:"level"`
	Confidence           float64      `json:"confidence"`
	Explanation          string       `json:"explanation"`
	ClauseContext        string       `json:"clause_context"`
	Recommendations      []string     `json:"recommendations"`
	MitigationStrategies []string     `json:"mitigation_strategies"`
}

// NewRiskFactor validates f and returns a copy that shares no slices with the input.
func NewRiskFactor(f RiskFactor) (RiskFactor, error) {
	if f.Text == "" {
		return RiskFactor{}, WrapError(ErrInvalidInput, "new risk factor", errors.New("empty text"))
	}
	if !f.Category.Valid() {
		return RiskFactor{}, WrapError(ErrInvalidInput, "new risk factor", fmt.Errorf("unknown category %q", f.Category))
	}
	if !f.Level.Valid() {
		return RiskFactor{}, WrapError(ErrInvalidInput, "new risk factor", fmt.Errorf("unknown level %q", f.Level))
	}
	if err := checkConfidence(f.Confidence); err != nil {
		return RiskFactor{}, WrapError(ErrInvalidInput, "new risk factor", err)
	}
	f.Recommendations = cloneStrings(f.Recommendations)
	f.MitigationStrategies = cloneStrings(f.MitigationStrategies)
	return f, nil
}

type RiskAssessment struct {
	OverallScore    float64      `json:"overall_score"`
	RiskLevel       RiskLevel    `json:"risk_level"`
	RiskFactors     []RiskFactor `json:"risk_factors"`
	MissingClauses  []string     `json:"missing_clauses"`
	Recommendations []string     `json:"recommendations"`
	Summary         string       `json:"summary"`
	Confidence      float64      `json:"confidence"`
}

// NewRiskAssessment validates the aggregate invariants and returns a defensive copy.
func NewRiskAssessment(a RiskAssessment) (RiskAssessment, error) {
	if math.IsNaN(a.OverallScore) || a.OverallScore < 1 || a.OverallScore > 10 {
		return RiskAssessment{}, WrapError(ErrInvalidInput, "new risk assessment", fmt.Errorf("score %.2f outside [1,10]", a.OverallScore))
	}
	if a.RiskLevel != LevelForScore(a.OverallScore) {
		return RiskAssessment{}, WrapError(ErrInvalidInput, "new risk assessment", fmt.Errorf("level %q does not match score %.2f", a.RiskLevel, a.OverallScore))
	}
	if err := checkConfidence(a.Confidence); err != nil {
		return RiskAssessment{}, WrapError(ErrInvalidInput, "new risk assessment", err)
	}
	if len(a.Recommendations) > MaxAssessmentRecommendations {
		return RiskAssessment{}, WrapError(ErrInvalidInput, "new risk assessment", fmt.Errorf("%d recommendations exceed cap", len(a.Recommendations)))
	}

	factors := make([]RiskFactor, 0, len(a.RiskFactors))
	for _, f := range a.RiskFactors {
		validated, err := NewRiskFactor(f)
		if err != nil {
			return RiskAssessment{}, err
		}
		factors = append(factors, validated)
	}
	a.RiskFactors = factors
	a.MissingClauses = cloneStrings(a.MissingClauses)
	a.Recommendations = cloneStrings(a.Recommendations)
	return a, nil
}

// CategoryCount returns the number of distinct categories among the factors.
func (a RiskAssessment) CategoryCount() int {
	seen := make(map[RiskCategory]struct{}, len(a.RiskFactors))
	for _, f := range a.RiskFactors {
		seen[f.Category] = struct{}{}
	}
	return len(seen)
}

func checkConfidence(v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return fmt.Errorf("confidence %.3f outside [0,1]", v)
	}
	return nil
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return slices.Clone(in)
}
