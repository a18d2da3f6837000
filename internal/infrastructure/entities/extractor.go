// Package entities tags legal entities in contract text with regular expressions.
package entities

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
	"github.com/kirillkom/legal-assistant/internal/core/ports"
)

const patternConfidence = 0.9

var amountPattern = regexp.MustCompile(`[\d,]+(?:\.\d{2})?`)

type labelPatterns struct {
	label    string
	patterns []string
}

type compiledLabel struct {
	label    string
	patterns []*regexp.Regexp
}

// Extractor is safe for concurrent use.
type Extractor struct {
	labels    []compiledLabel
	segmenter ports.SentenceSegmenter
}

// NewExtractor compiles the pattern tables. The segmenter is optional and, when
// set, fills each entity's context with its enclosing sentence.
func NewExtractor(segmenter ports.SentenceSegmenter, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Extractor{segmenter: segmenter}
	for _, lp := range defaultPatterns {
		cl := compiledLabel{label: lp.label}
		for _, src := range lp.patterns {
			re, err := regexp.Compile("(?i)" + src)
			if err != nil {
				logger.Warn("entity_pattern_skipped", "label", lp.label, "pattern", src, "error", err)
				continue
			}
			cl.patterns = append(cl.patterns, re)
		}
		e.labels = append(e.labels, cl)
	}
	return e
}

// Extract returns entities grouped by label, each group ordered by position.
// Matches sharing a span are reported once.
func (e *Extractor) Extract(text string) domain.EntitySet {
	set := domain.EntitySet{}
	if strings.TrimSpace(text) == "" {
		return set
	}

	var sentences []domain.Sentence
	if e.segmenter != nil {
		sentences = e.segmenter.Sentences(text)
	}

	type span struct{ start, end int }
	seen := make(map[span]struct{})
	for _, cl := range e.labels {
		for _, re := range cl.patterns {
			for _, loc := range re.FindAllStringIndex(text, -1) {
				key := span{loc[0], loc[1]}
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}

				value := strings.TrimSpace(text[loc[0]:loc[1]])
				if value == "" {
					continue
				}
				set[cl.label] = append(set[cl.label], domain.Entity{
					Text:            value,
					Label:           cl.label,
					Start:           loc[0],
					End:             loc[1],
					Confidence:      patternConfidence,
					Context:         sentenceAt(sentences, loc[0]),
					NormalizedValue: normalize(cl.label, value),
					Source:          domain.EntitySourcePattern,
				})
			}
		}
	}

	for label := range set {
		sort.SliceStable(set[label], func(i, j int) bool {
			return set[label][i].Start < set[label][j].Start
		})
	}
	return set
}

func normalize(label, value string) string {
	switch label {
	case "MONEY":
		if amount := amountPattern.FindString(value); amount != "" {
			return strings.ReplaceAll(amount, ",", "")
		}
		return value
	case "DATES":
		return value
	default:
		return ""
	}
}

func sentenceAt(sentences []domain.Sentence, offset int) string {
	i := sort.Search(len(sentences), func(i int) bool { return sentences[i].End > offset })
	if i < len(sentences) && sentences[i].Start <= offset {
		return sentences[i].Text
	}
	return ""
}
