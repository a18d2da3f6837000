// Package qa answers natural-language questions about contract text by routing
// each question to a pattern-based extractor.
package qa

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
	"github.com/kirillkom/legal-assistant/internal/core/ports"
)

const (
	maxListed         = 5
	maxGeneralAnswer  = 300
	minRelevantWords  = 2
	minQuestionLength = 4

	notFoundConfidence = 0.3

	generalFoundConfidence    = 0.6
	generalNotFoundConfidence = 0.2
	generalNotFoundAnswer     = "I couldn't find specific information to answer that question. Please try rephrasing or ask about parties, amounts, dates, or jurisdiction."
)

// extractor describes one specialised answer routine: the prefix of a positive
// answer, the negative answer and the fixed confidence of each outcome.
type extractor struct {
	intent          domain.QAIntent
	foundPrefix     string
	notFound        string
	foundConfidence float64
	window          int
	// capture reports the first capture group instead of the whole match.
	capture bool
}

var (
	moneyExtractor = extractor{
		intent:          domain.IntentMoney,
		foundPrefix:     "Found monetary amounts: ",
		notFound:        "No monetary amounts found in the document.",
		foundConfidence: 0.9,
		window:          100,
	}
	partyExtractor = extractor{
		intent:          domain.IntentParty,
		foundPrefix:     "Found parties: ",
		notFound:        "No clear parties or organizations identified in the document.",
		foundConfidence: 0.85,
		window:          50,
	}
	dateExtractor = extractor{
		intent:          domain.IntentDate,
		foundPrefix:     "Found important dates: ",
		notFound:        "No specific dates found in the document.",
		foundConfidence: 0.8,
		window:          80,
	}
	jurisdictionExtractor = extractor{
		intent:          domain.IntentJurisdiction,
		foundPrefix:     "Found jurisdiction/governing law: ",
		notFound:        "No clear jurisdiction or governing law clauses found.",
		foundConfidence: 0.9,
		window:          50,
		capture:         true,
	}
	terminationExtractor = extractor{
		intent:          domain.IntentTermination,
		foundPrefix:     "Found termination terms: ",
		notFound:        "No specific termination clauses found.",
		foundConfidence: 0.85,
		window:          100,
		capture:         true,
	}
	paymentExtractor = extractor{
		intent:          domain.IntentPayment,
		foundPrefix:     "Found payment terms: ",
		notFound:        "No specific payment terms found.",
		foundConfidence: 0.85,
		window:          100,
		capture:         true,
	}
)

// Route is one entry of the ordered routing table: the first route whose
// keywords occur in the question wins.
type Route struct {
	Intent   domain.QAIntent
	Keywords []string
}

// Matches reports whether any keyword occurs anywhere in the question.
func (r Route) Matches(question string) bool {
	return containsAny(strings.ToLower(question), r.Keywords)
}

// Engine holds compiled pattern tables only and is safe for concurrent use.
// The document is passed per call; Session keeps one loaded document.
type Engine struct {
	segmenter ports.SentenceSegmenter
	logger    *slog.Logger

	routes       []Route
	currencies   map[string][]*regexp.Regexp
	companies    []*regexp.Regexp
	people       []*regexp.Regexp
	dates        []*regexp.Regexp
	jurisdiction []*regexp.Regexp
	termination  []*regexp.Regexp
	payment      []*regexp.Regexp
}

type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine compiles the pattern tables. A malformed pattern is logged and
// skipped; a missing segmenter or an empty table set is domain.ErrEngineUnavailable.
func NewEngine(segmenter ports.SentenceSegmenter, opts ...Option) (*Engine, error) {
	e := &Engine{
		segmenter:  segmenter,
		logger:     slog.Default(),
		currencies: make(map[string][]*regexp.Regexp, len(currencyOrder)),
	}
	for _, opt := range opts {
		opt(e)
	}
	if segmenter == nil {
		return nil, domain.WrapError(domain.ErrEngineUnavailable, "new qa engine", errors.New("sentence segmenter is nil"))
	}

	total := 0
	for _, code := range currencyOrder {
		e.currencies[code] = e.compileAll(string(domain.IntentMoney)+"/"+code, "(?i)", currencyPatterns[code])
		total += len(e.currencies[code])
	}
	e.companies = e.compileAll("companies", "", companyPatterns)
	e.people = e.compileAll("people", "", peoplePatterns)
	e.dates = e.compileAll(string(domain.IntentDate), "(?i)", datePatterns)
	e.jurisdiction = e.compileAll(string(domain.IntentJurisdiction), "(?i)", jurisdictionPatterns)
	e.termination = e.compileAll(string(domain.IntentTermination), "(?i)", terminationPatterns)
	e.payment = e.compileAll(string(domain.IntentPayment), "(?i)", paymentPatterns)
	total += len(e.companies) + len(e.people) + len(e.dates) + len(e.jurisdiction) + len(e.termination) + len(e.payment)
	if total == 0 {
		return nil, domain.WrapError(domain.ErrEngineUnavailable, "new qa engine", errors.New("no usable patterns"))
	}

	for _, r := range routeKeywords {
		e.routes = append(e.routes, Route{Intent: r.intent, Keywords: slices.Clone(r.keywords)})
	}
	return e, nil
}

func (e *Engine) compileAll(table, flags string, sources []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(sources))
	for _, src := range sources {
		re, err := regexp.Compile(flags + src)
		if err != nil {
			e.logger.Warn("qa_pattern_skipped", "table", table, "pattern", src, "error", err)
			continue
		}
		out = append(out, re)
	}
	return out
}

// Routes returns a copy of the routing table in priority order.
func (e *Engine) Routes() []Route {
	out := make([]Route, 0, len(e.routes))
	for _, r := range e.routes {
		out = append(out, Route{Intent: r.Intent, Keywords: slices.Clone(r.Keywords)})
	}
	return out
}

// Classify returns the intent of the first matching route, or IntentGeneral.
func (e *Engine) Classify(question string) domain.QAIntent {
	for _, r := range e.routes {
		if r.Matches(question) {
			return r.Intent
		}
	}
	return domain.IntentGeneral
}

// Answer never fails: when nothing matches it returns a low-confidence
// negative answer.
func (e *Engine) Answer(text, question, jurisdiction string) domain.QAResult {
	intent := e.Classify(question)

	var res domain.QAResult
	switch intent {
	case domain.IntentMoney:
		res = e.extract(moneyExtractor, text, question, e.currencyPatterns(jurisdiction))
	case domain.IntentParty:
		patterns := e.companies
		if containsAny(strings.ToLower(question), personKeywords) {
			patterns = append(slices.Clip(patterns), e.people...)
		}
		res = e.extract(partyExtractor, text, question, patterns)
	case domain.IntentDate:
		res = e.extract(dateExtractor, text, question, e.dates)
	case domain.IntentJurisdiction:
		res = e.extract(jurisdictionExtractor, text, question, e.jurisdiction)
	case domain.IntentTermination:
		res = e.extract(terminationExtractor, text, question, e.termination)
	case domain.IntentPayment:
		res = e.extract(paymentExtractor, text, question, e.payment)
	default:
		res = e.general(text, question)
	}

	validated, err := domain.NewQAResult(res)
	if err != nil {
		e.logger.Error("qa_result_invalid", "intent", intent, "error", err)
		return res
	}
	e.logger.Debug("qa_answered", "intent", intent, "confidence", validated.Confidence, "sources", len(validated.Sources))
	return validated
}

// SuggestedQuestions returns the base questions plus region-specific ones.
func (e *Engine) SuggestedQuestions(jurisdiction string) []string {
	out := slices.Clone(baseSuggestions)
	if r, ok := lookupRegion(jurisdiction); ok {
		out = append(out, r.suggestions...)
	}
	return out
}

// currencyPatterns narrows the money table to the region's currency; unknown
// regions use every currency.
func (e *Engine) currencyPatterns(jurisdiction string) []*regexp.Regexp {
	if r, ok := lookupRegion(jurisdiction); ok {
		return e.currencies[r.currency]
	}
	var all []*regexp.Regexp
	for _, code := range currencyOrder {
		all = append(all, e.currencies[code]...)
	}
	return all
}

type match struct {
	value      string
	start, end int
}

func (e *Engine) extract(x extractor, text, question string, patterns []*regexp.Regexp) domain.QAResult {
	matches := scan(text, patterns, x.capture)
	if len(matches) == 0 {
		return domain.QAResult{
			Question:   question,
			Answer:     x.notFound,
			Confidence: notFoundConfidence,
			Intent:     x.intent,
		}
	}

	values := uniqueValues(matches)
	return domain.QAResult{
		Question:   question,
		Answer:     listAnswer(x.foundPrefix, values),
		Confidence: x.foundConfidence,
		Context:    contextWindow(text, matches[0].start, matches[0].end, x.window),
		Sources:    values,
		Intent:     x.intent,
	}
}

// scan collects matches pattern by pattern. Blank values are dropped.
func scan(text string, patterns []*regexp.Regexp, capture bool) []match {
	var out []match
	for _, re := range patterns {
		useGroup := capture && re.NumSubexp() > 0
		for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
			value := text[loc[0]:loc[1]]
			if useGroup && loc[2] >= 0 {
				value = text[loc[2]:loc[3]]
			}
			value = strings.TrimSpace(value)
			if value == "" {
				continue
			}
			out = append(out, match{value: value, start: loc[0], end: loc[1]})
		}
	}
	return out
}

func (e *Engine) general(text, question string) domain.QAResult {
	var keywords []string
	for _, w := range questionWords(question) {
		if utf8.RuneCountInString(w) >= minQuestionLength {
			keywords = append(keywords, w)
		}
	}

	best := ""
	bestLen := 0
	for _, s := range e.segmenter.Sentences(text) {
		lower := strings.ToLower(s.Text)
		hits := 0
		for _, k := range keywords {
			if strings.Contains(lower, k) {
				hits++
			}
		}
		if hits < minRelevantWords {
			continue
		}
		if n := utf8.RuneCountInString(s.Text); n > bestLen {
			best, bestLen = s.Text, n
		}
	}

	if best == "" {
		return domain.QAResult{
			Question:   question,
			Answer:     generalNotFoundAnswer,
			Confidence: generalNotFoundConfidence,
			Intent:     domain.IntentGeneral,
		}
	}
	return domain.QAResult{
		Question:   question,
		Answer:     truncateRunes(best, maxGeneralAnswer),
		Confidence: generalFoundConfidence,
		Context:    best,
		Sources:    []string{best},
		Intent:     domain.IntentGeneral,
	}
}

// questionWords lower-cases the question and splits it on anything that is not
// a letter or digit.
func questionWords(question string) []string {
	return strings.FieldsFunc(strings.ToLower(question), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func uniqueValues(matches []match) []string {
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m.value]; ok {
			continue
		}
		seen[m.value] = struct{}{}
		out = append(out, m.value)
	}
	return out
}

func listAnswer(prefix string, values []string) string {
	answer := prefix + strings.Join(values[:min(len(values), maxListed)], ", ")
	if extra := len(values) - maxListed; extra > 0 {
		answer += fmt.Sprintf(" and %d more", extra)
	}
	return answer
}

// contextWindow returns up to width runes on each side of text[start:end].
func contextWindow(text string, start, end, width int) string {
	from := start
	for n := 0; n < width && from > 0; n++ {
		_, size := utf8.DecodeLastRuneInString(text[:from])
		from -= size
	}
	to := end
	for n := 0; n < width && to < len(text); n++ {
		_, size := utf8.DecodeRuneInString(text[to:])
		to += size
	}
	return strings.TrimSpace(text[from:to])
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	i := 0
	for range limit {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return s[:i] + "..."
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
