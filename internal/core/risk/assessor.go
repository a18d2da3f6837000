// Package risk scores the risk profile of contract text against a static
// knowledge base of clause patterns and standard protective clauses.
package risk

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"slices"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
	"github.com/kirillkom/legal-assistant/internal/core/ports"
)

const (
	factorConfidence         = 0.85
	missingClauseWeight      = 0.5
	cleanDocumentScore       = 2.0
	confidenceCap            = 0.95
	noFactorConfidence       = 0.8
	recommendationsPerFactor = 2

	genericExplanation = "This clause presents potential risks."
)

var severityWeights = map[domain.RiskLevel]float64{
	domain.RiskLow:      1.0,
	domain.RiskMedium:   2.5,
	domain.RiskHigh:     4.0,
	domain.RiskCritical: 5.0,
}

type compiledPattern struct {
	category      domain.RiskCategory
	phrase        string
	lowerSource   string
	re            *regexp.Regexp
	notFollowedBy *regexp.Regexp
	explanation   string
}

type standardClause struct {
	name        string
	displayName string
	keywords    []string
}

// Assessor is safe for concurrent use: all tables are built in NewAssessor and
// never written afterwards.
type Assessor struct {
	segmenter  ports.SentenceSegmenter
	logger     *slog.Logger
	patterns   []compiledPattern
	mitigation map[domain.RiskCategory][]string
	clauses    []standardClause
	critical   []string
	high       []string
	medium     []string
}

type Option func(*Assessor)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Assessor) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAssessor compiles the knowledge base. Individual malformed patterns are
// logged and skipped; a knowledge base without a single usable pattern, or a
// missing segmenter, is reported as domain.ErrEngineUnavailable.
func NewAssessor(kb *KnowledgeBase, segmenter ports.SentenceSegmenter, opts ...Option) (*Assessor, error) {
	a := &Assessor{
		segmenter:  segmenter,
		logger:     slog.Default(),
		mitigation: make(map[domain.RiskCategory][]string),
	}
	for _, opt := range opts {
		opt(a)
	}

	if kb == nil {
		return nil, domain.WrapError(domain.ErrEngineUnavailable, "new risk assessor", errors.New("knowledge base is nil"))
	}
	if segmenter == nil {
		return nil, domain.WrapError(domain.ErrEngineUnavailable, "new risk assessor", errors.New("sentence segmenter is nil"))
	}

	a.critical = lowerAll(kb.Severity.Critical)
	a.high = lowerAll(kb.Severity.High)
	a.medium = lowerAll(kb.Severity.Medium)

	for _, cat := range kb.Categories {
		if !cat.Category.Valid() {
			a.logger.Warn("risk_category_skipped", "category", cat.Category, "reason", "unknown category")
			continue
		}
		a.mitigation[cat.Category] = slices.Clone(cat.Mitigation)
		for _, spec := range cat.Patterns {
			p, err := compilePattern(cat, spec)
			if err != nil {
				a.logger.Warn("risk_pattern_skipped", "category", cat.Category, "phrase", spec.Phrase, "error", err)
				continue
			}
			a.patterns = append(a.patterns, p)
		}
	}
	if len(a.patterns) == 0 {
		return nil, domain.WrapError(domain.ErrEngineUnavailable, "new risk assessor", errors.New("no usable risk patterns"))
	}

	for _, clause := range kb.StandardClauses {
		if clause.Name == "" || len(clause.Keywords) == 0 {
			a.logger.Warn("standard_clause_skipped", "name", clause.Name)
			continue
		}
		a.clauses = append(a.clauses, standardClause{
			name:        clause.Name,
			displayName: titleCase(strings.ReplaceAll(clause.Name, "_", " ")),
			keywords:    lowerAll(clause.Keywords),
		})
	}

	a.logger.Debug("risk_assessor_ready", "patterns", len(a.patterns), "standard_clauses", len(a.clauses))
	return a, nil
}

func compilePattern(cat CategoryKnowledge, spec PatternSpec) (compiledPattern, error) {
	if strings.TrimSpace(spec.Regex) == "" {
		return compiledPattern{}, errors.New("empty regex")
	}
	re, err := regexp.Compile("(?i)" + spec.Regex)
	if err != nil {
		return compiledPattern{}, fmt.Errorf("compile regex: %w", err)
	}
	p := compiledPattern{
		category:    cat.Category,
		phrase:      spec.Phrase,
		lowerSource: strings.ToLower(spec.Regex),
		re:          re,
	}
	if spec.NotFollowedBy != "" {
		p.notFollowedBy, err = regexp.Compile(`(?i)^(?:` + spec.NotFollowedBy + `)`)
		if err != nil {
			return compiledPattern{}, fmt.Errorf("compile not_followed_by: %w", err)
		}
	}
	p.explanation = explain(cat, p)
	return p, nil
}

// explain picks the first explanation whose key occurs in the pattern phrase or
// source, falling back to the category default.
func explain(cat CategoryKnowledge, p compiledPattern) string {
	phrase := strings.ToLower(p.phrase)
	for _, e := range cat.Explanations {
		key := strings.ToLower(e.Key)
		if key == "" {
			continue
		}
		if strings.Contains(phrase, key) || strings.Contains(p.lowerSource, key) {
			return e.Text
		}
	}
	if cat.DefaultExplanation != "" {
		return cat.DefaultExplanation
	}
	return genericExplanation
}

// Assess never fails: blank text yields the clean-document result.
func (a *Assessor) Assess(text string) domain.RiskAssessment {
	if strings.TrimSpace(text) == "" {
		return a.build(nil, nil)
	}
	return a.build(a.detectFactors(text), a.missingClauses(text))
}

func (a *Assessor) detectFactors(text string) []domain.RiskFactor {
	sentences := a.segmenter.Sentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var factors []domain.RiskFactor
	for _, p := range a.patterns {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			if p.notFollowedBy != nil && p.notFollowedBy.MatchString(text[loc[1]:]) {
				continue
			}
			sentence, ok := enclosingSentence(sentences, loc[0], loc[1])
			if !ok {
				continue
			}
			mitigation := a.mitigation[p.category]
			factor, err := domain.NewRiskFactor(domain.RiskFactor{
				Text:                 text[loc[0]:loc[1]],
				Category:             p.category,
				Level:                a.severity(p, sentence.Text),
				Confidence:           factorConfidence,
				Explanation:          p.explanation,
				ClauseContext:        sentence.Text,
				Recommendations:      mitigation,
				MitigationStrategies: mitigation,
			})
			if err != nil {
				a.logger.Warn("risk_factor_dropped", "phrase", p.phrase, "error", err)
				continue
			}
			factors = append(factors, factor)
		}
	}
	return factors
}

// enclosingSentence finds the sentence whose span fully contains [start,end).
// Sentences are ordered and non-overlapping.
func enclosingSentence(sentences []domain.Sentence, start, end int) (domain.Sentence, bool) {
	i := sort.Search(len(sentences), func(i int) bool { return sentences[i].End >= end })
	if i < len(sentences) && sentences[i].Contains(start, end) {
		return sentences[i], true
	}
	return domain.Sentence{}, false
}

// severity applies the ordered cascade: critical and high indicators are looked
// up in the pattern source and the sentence, medium ones in the pattern only.
func (a *Assessor) severity(p compiledPattern, sentence string) domain.RiskLevel {
	lowerSentence := strings.ToLower(sentence)
	switch {
	case containsAny(p.lowerSource, a.critical) || containsAny(lowerSentence, a.critical):
		return domain.RiskCritical
	case containsAny(p.lowerSource, a.high) || containsAny(lowerSentence, a.high):
		return domain.RiskHigh
	case containsAny(p.lowerSource, a.medium):
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}

func (a *Assessor) missingClauses(text string) []string {
	lower := strings.ToLower(text)
	var missing []string
	for _, clause := range a.clauses {
		if !containsAny(lower, clause.keywords) {
			missing = append(missing, clause.name)
		}
	}
	return missing
}

func (a *Assessor) build(factors []domain.RiskFactor, missing []string) domain.RiskAssessment {
	score := overallScore(factors, len(missing))
	assessment := domain.RiskAssessment{
		OverallScore:    score,
		RiskLevel:       domain.LevelForScore(score),
		RiskFactors:     factors,
		MissingClauses:  missing,
		Recommendations: a.recommendations(factors, missing),
		Confidence:      assessmentConfidence(factors),
	}
	assessment.Summary = summarize(assessment)

	validated, err := domain.NewRiskAssessment(assessment)
	if err != nil {
		a.logger.Error("risk_assessment_invalid", "error", err)
		return assessment
	}
	a.logger.Debug("risk_assessment_completed",
		"score", validated.OverallScore,
		"level", validated.RiskLevel,
		"factors", len(validated.RiskFactors),
		"missing_clauses", len(validated.MissingClauses),
	)
	return validated
}

// overallScore keeps 2.0 for a document with nothing to report; otherwise the
// weighted sum is normalized against the worst case for the same counts.
func overallScore(factors []domain.RiskFactor, missing int) float64 {
	if len(factors) == 0 && missing == 0 {
		return cleanDocumentScore
	}

	accumulated := 0.0
	for _, f := range factors {
		accumulated += severityWeights[f.Level] * f.Confidence
	}
	accumulated += float64(missing) * missingClauseWeight

	maxPossible := float64(len(factors))*severityWeights[domain.RiskCritical] + float64(missing)*missingClauseWeight
	score := math.Min(10.0, accumulated/maxPossible*10)
	return math.Max(1.0, score)
}

func (a *Assessor) recommendations(factors []domain.RiskFactor, missing []string) []string {
	var recs []string
	for _, f := range factors {
		n := min(recommendationsPerFactor, len(f.Recommendations))
		recs = append(recs, f.Recommendations[:n]...)
	}
	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for _, name := range missing {
			names = append(names, a.displayName(name))
		}
		recs = append(recs, "Consider adding the following clauses: "+strings.Join(names, ", "))
	}

	seen := make(map[string]struct{}, len(recs))
	out := make([]string, 0, min(len(recs), domain.MaxAssessmentRecommendations))
	for _, rec := range recs {
		if _, ok := seen[rec]; ok {
			continue
		}
		seen[rec] = struct{}{}
		out = append(out, rec)
		if len(out) == domain.MaxAssessmentRecommendations {
			break
		}
	}
	return out
}

func (a *Assessor) displayName(name string) string {
	for _, c := range a.clauses {
		if c.name == name {
			return c.displayName
		}
	}
	return name
}

func assessmentConfidence(factors []domain.RiskFactor) float64 {
	if len(factors) == 0 {
		return noFactorConfidence
	}
	total := 0.0
	for _, f := range factors {
		total += f.Confidence
	}
	return math.Min(confidenceCap, total/float64(len(factors)))
}

func summarize(a domain.RiskAssessment) string {
	severity := string(a.RiskLevel)
	if a.RiskLevel == domain.RiskMedium {
		severity = "moderate"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "This document presents %s risk with a score of %.1f/10. ", severity, a.OverallScore)
	if len(a.RiskFactors) > 0 {
		fmt.Fprintf(&b, "Found %d risk factors across %d categories. ", len(a.RiskFactors), a.CategoryCount())
	}
	if len(a.MissingClauses) > 0 {
		fmt.Fprintf(&b, "Missing %d important protective clauses. ", len(a.MissingClauses))
	}
	b.WriteString("Review recommendations for risk mitigation strategies.")
	return b.String()
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(s))
	}
	return out
}

// titleCase upper-cases the first letter of every word: "limitation of liability"
// becomes "Limitation Of Liability".
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
