package risk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
	"github.com/kirillkom/legal-assistant/internal/infrastructure/chunking"
)

// cleanContract mentions every standard clause and trips no risk pattern.
const cleanContract = "This Agreement includes a limitation of liability. " +
	"Neither party is liable for force majeure events. " +
	"Each party shall maintain confidentiality. " +
	"Any dispute resolution shall proceed by arbitration. " +
	"A notice period of thirty days applies. " +
	"All intellectual property remains with its owner."

func newTestAssessor(t *testing.T) *Assessor {
	t.Helper()
	kb, err := DefaultKnowledgeBase()
	require.NoError(t, err)
	a, err := NewAssessor(kb, chunking.NewSentenceSegmenter())
	require.NoError(t, err)
	return a
}

func TestAssessCleanDocumentFloor(t *testing.T) {
	a := newTestAssessor(t)

	got := a.Assess(cleanContract)

	assert.Equal(t, 2.0, got.OverallScore)
	assert.Equal(t, domain.RiskLow, got.RiskLevel)
	assert.Empty(t, got.RiskFactors)
	assert.Empty(t, got.MissingClauses)
	assert.Empty(t, got.Recommendations)
	assert.Equal(t, 0.8, got.Confidence)
	assert.Equal(t, "This document presents low risk with a score of 2.0/10. Review recommendations for risk mitigation strategies.", got.Summary)
}

func TestAssessBlankTextDegradesToCleanResult(t *testing.T) {
	a := newTestAssessor(t)

	for _, text := range []string{"", "   ", "\n\t\n"} {
		got := a.Assess(text)
		assert.Equal(t, 2.0, got.OverallScore)
		assert.Equal(t, domain.RiskLow, got.RiskLevel)
		assert.Empty(t, got.RiskFactors)
		assert.Empty(t, got.MissingClauses)
	}
}

func TestAssessReportsAllMissingClauses(t *testing.T) {
	a := newTestAssessor(t)

	got := a.Assess("The supplier shall deliver the goods on Monday.")

	assert.Empty(t, got.RiskFactors)
	assert.Equal(t, []string{
		"limitation_of_liability",
		"force_majeure",
		"confidentiality",
		"dispute_resolution",
		"termination_notice",
		"intellectual_property",
	}, got.MissingClauses)
	assert.Equal(t, 10.0, got.OverallScore)
	assert.Equal(t, domain.RiskCritical, got.RiskLevel)
	assert.Equal(t, []string{
		"Consider adding the following clauses: Limitation Of Liability, Force Majeure, Confidentiality, Dispute Resolution, Termination Notice, Intellectual Property",
	}, got.Recommendations)
	assert.Contains(t, got.Summary, "Missing 6 important protective clauses.")
}

func TestAssessForceMajeureKeywordIsNeverMissing(t *testing.T) {
	a := newTestAssessor(t)

	for _, text := range []string{
		"Delays caused by Force Majeure are excused.",
		"force majeure",
		"The parties discussed FORCE MAJEURE at length; nothing else was agreed.",
	} {
		got := a.Assess(text)
		assert.NotContains(t, got.MissingClauses, "force_majeure", text)
	}
}

func TestAssessCriticalFactor(t *testing.T) {
	a := newTestAssessor(t)

	got := a.Assess(cleanContract + " The Supplier accepts unlimited liability for all claims.")

	require.Len(t, got.RiskFactors, 1)
	f := got.RiskFactors[0]
	assert.Equal(t, "unlimited liability", f.Text)
	assert.Equal(t, domain.CategoryLiability, f.Category)
	assert.Equal(t, domain.RiskCritical, f.Level)
	assert.Equal(t, 0.85, f.Confidence)
	assert.Equal(t, "The Supplier accepts unlimited liability for all claims.", f.ClauseContext)
	assert.Equal(t, "Unlimited liability exposes parties to potentially catastrophic financial losses without caps or limits.", f.Explanation)
	assert.Len(t, f.MitigationStrategies, 4)

	assert.InDelta(t, 8.5, got.OverallScore, 1e-9)
	assert.Equal(t, domain.RiskCritical, got.RiskLevel)
	assert.Equal(t, []string{
		"Add liability caps to limit maximum exposure",
		"Include mutual indemnification clauses",
	}, got.Recommendations)
	assert.Equal(t, 0.85, got.Confidence)
	assert.Equal(t, "This document presents critical risk with a score of 8.5/10. Found 1 risk factors across 1 categories. Review recommendations for risk mitigation strategies.", got.Summary)
}

func TestAssessSeverityCascade(t *testing.T) {
	a := newTestAssessor(t)

	tests := []struct {
		name     string
		sentence string
		phrase   string
		want     domain.RiskLevel
	}{
		{name: "high from sentence indicator", sentence: "The licensee shall pay liquidated damages.", phrase: "liquidated damages", want: domain.RiskHigh},
		{name: "high from pattern source", sentence: "Buyer shall make immediate payment on delivery.", phrase: "immediate payment", want: domain.RiskHigh},
		{name: "medium from pattern source", sentence: "Late invoices incur a penalty.", phrase: "penalty", want: domain.RiskMedium},
		{name: "critical from sentence", sentence: "Immediate termination applies on default.", phrase: "Immediate termination", want: domain.RiskCritical},
		{name: "low without indicators", sentence: "Either party may terminate at will.", phrase: "terminate at will", want: domain.RiskLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Assess(cleanContract + " " + tt.sentence)
			require.Len(t, got.RiskFactors, 1)
			assert.Equal(t, tt.phrase, got.RiskFactors[0].Text)
			assert.Equal(t, tt.want, got.RiskFactors[0].Level)
		})
	}
}

func TestAssessPenaltyClauseIsNotFlagged(t *testing.T) {
	a := newTestAssessor(t)

	got := a.Assess(cleanContract + " The penalty clause in Schedule 2 is void.")

	assert.Empty(t, got.RiskFactors)
}

func TestAssessSkipsMatchSpanningSentences(t *testing.T) {
	a := newTestAssessor(t)

	got := a.Assess(cleanContract + " Vendor shall indemnify Buyer. Claims arising from and against all parties are covered.")

	assert.Empty(t, got.RiskFactors)
}

// Every factor contributes at most 0.85 of the critical weight, so with no
// missing clauses an added critical factor cannot lower the normalized score.
func TestAssessScoreNeverDecreasesWhenCriticalFactorAddedToCompleteContract(t *testing.T) {
	a := newTestAssessor(t)
	critical := " The Supplier accepts unlimited liability for all claims."

	bases := []string{
		cleanContract,
		cleanContract + " Late invoices incur a penalty.",
		cleanContract + " Either party may terminate at will. Work for hire applies to deliverables.",
		cleanContract + " The Customer gives a personal guarantee.",
	}
	for _, base := range bases {
		before := a.Assess(base)
		after := a.Assess(base + critical)
		assert.GreaterOrEqual(t, after.OverallScore, before.OverallScore, base)
		assert.GreaterOrEqual(t, after.RiskLevel.Rank(), before.RiskLevel.Rank(), base)
	}
}

// Missing clauses count at their full weight, so a document made only of
// missing clauses sits at the cap and any detected factor pulls the ratio down.
func TestAssessScoreDropsWhenFactorJoinsOnlyMissingClauses(t *testing.T) {
	a := newTestAssessor(t)
	base := "The supplier shall deliver the goods on Monday."

	before := a.Assess(base)
	after := a.Assess(base + " The Supplier accepts unlimited liability for all claims.")

	require.Empty(t, before.RiskFactors)
	require.Len(t, before.MissingClauses, 6)
	require.Len(t, after.RiskFactors, 1)
	require.Len(t, after.MissingClauses, 6)
	assert.Equal(t, 10.0, before.OverallScore)
	// (0.85*5 + 6*0.5) / (5 + 6*0.5) * 10
	assert.InDelta(t, 9.0625, after.OverallScore, 1e-9)
	assert.Equal(t, domain.RiskCritical, after.RiskLevel)
}

func TestAssessScoreNeverDecreasesWhenClauseGoesMissing(t *testing.T) {
	a := newTestAssessor(t)

	withAll := a.Assess(cleanContract + " Late invoices incur a penalty.")
	withoutConfidentiality := a.Assess(strings.Replace(cleanContract, "Each party shall maintain confidentiality. ", "", 1) + " Late invoices incur a penalty.")

	require.Contains(t, withoutConfidentiality.MissingClauses, "confidentiality")
	assert.GreaterOrEqual(t, withoutConfidentiality.OverallScore, withAll.OverallScore)
}

func TestAssessRecommendationsAreDedupedAndCapped(t *testing.T) {
	a := newTestAssessor(t)

	text := "The Supplier accepts unlimited liability. " +
		"The Supplier also accepts unlimited liability for subcontractors. " +
		"Late delivery triggers liquidated damages. " +
		"The Customer may invoke termination for convenience. " +
		"All code is work for hire. " +
		"Strict compliance with the policies is required. " +
		"Approval is at the sole discretion of the Customer."

	got := a.Assess(text)

	assert.Len(t, got.Recommendations, domain.MaxAssessmentRecommendations)
	seen := map[string]bool{}
	for _, rec := range got.Recommendations {
		assert.False(t, seen[rec], "duplicate recommendation %q", rec)
		seen[rec] = true
	}
	assert.Equal(t, "Add liability caps to limit maximum exposure", got.Recommendations[0])
	assert.Equal(t, "Include mutual indemnification clauses", got.Recommendations[1])
	assert.Equal(t, "Negotiate payment terms and schedules", got.Recommendations[2])
}

func TestAssessIsDeterministic(t *testing.T) {
	a := newTestAssessor(t)
	text := cleanContract + " Late invoices incur a penalty. Either party may terminate at will. The Supplier accepts unlimited liability."

	first := a.Assess(text)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, a.Assess(text))
	}
}

func TestAssessorIsSafeForConcurrentUse(t *testing.T) {
	a := newTestAssessor(t)
	text := cleanContract + " The Supplier accepts unlimited liability."
	want := a.Assess(text)

	done := make(chan domain.RiskAssessment, 8)
	for i := 0; i < cap(done); i++ {
		go func() { done <- a.Assess(text) }()
	}
	for i := 0; i < cap(done); i++ {
		assert.Equal(t, want, <-done)
	}
}

func TestNewAssessorFailsWithoutCapabilities(t *testing.T) {
	kb, err := DefaultKnowledgeBase()
	require.NoError(t, err)

	_, err = NewAssessor(nil, chunking.NewSentenceSegmenter())
	assert.True(t, domain.IsKind(err, domain.ErrEngineUnavailable), "nil knowledge base: %v", err)

	_, err = NewAssessor(kb, nil)
	assert.True(t, domain.IsKind(err, domain.ErrEngineUnavailable), "nil segmenter: %v", err)

	broken := &KnowledgeBase{Categories: []CategoryKnowledge{{
		Category: domain.CategoryLiability,
		Patterns: []PatternSpec{{Phrase: "broken", Regex: `(unclosed`}},
	}}}
	_, err = NewAssessor(broken, chunking.NewSentenceSegmenter())
	assert.True(t, domain.IsKind(err, domain.ErrEngineUnavailable), "no usable patterns: %v", err)
}

func TestNewAssessorSkipsMalformedPattern(t *testing.T) {
	kb := &KnowledgeBase{
		Severity: SeverityIndicators{Critical: []string{"unlimited liability"}},
		Categories: []CategoryKnowledge{{
			Category: domain.CategoryLiability,
			Patterns: []PatternSpec{
				{Phrase: "broken", Regex: `(unclosed`},
				{Phrase: "unlimited liability", Regex: `\bunlimited\s+liability\b`},
			},
		}},
	}

	a, err := NewAssessor(kb, chunking.NewSentenceSegmenter())
	require.NoError(t, err)

	got := a.Assess("We accept unlimited liability.")
	require.Len(t, got.RiskFactors, 1)
	assert.Equal(t, genericExplanation, got.RiskFactors[0].Explanation)
	assert.Equal(t, domain.RiskCritical, got.RiskFactors[0].Level)
}

func TestDefaultKnowledgeBaseCoversEveryCategory(t *testing.T) {
	kb, err := DefaultKnowledgeBase()
	require.NoError(t, err)

	covered := map[domain.RiskCategory]bool{}
	for _, cat := range kb.Categories {
		covered[cat.Category] = len(cat.Patterns) > 0 && len(cat.Mitigation) > 0
	}
	for _, c := range domain.RiskCategories() {
		assert.True(t, covered[c], "category %s has no patterns or mitigation", c)
	}
	assert.Len(t, kb.StandardClauses, 6)
}
