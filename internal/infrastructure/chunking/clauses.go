package chunking

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kirillkom/legal-assistant/internal/core/ports"
)

// Words after which a new clause begins. Matching is case-sensitive.
var defaultClauseBoundaries = []string{"but", "and", "although", "however", "Hence"}

// ClauseSplitter breaks sentences into clauses at semicolons and conjunctions.
type ClauseSplitter struct {
	segmenter  ports.SentenceSegmenter
	boundaries map[string]struct{}
}

func NewClauseSplitter(segmenter ports.SentenceSegmenter) *ClauseSplitter {
	boundaries := make(map[string]struct{}, len(defaultClauseBoundaries))
	for _, b := range defaultClauseBoundaries {
		boundaries[b] = struct{}{}
	}
	return &ClauseSplitter{segmenter: segmenter, boundaries: boundaries}
}

func (c *ClauseSplitter) Clauses(text string) []string {
	var out []string
	for _, sentence := range c.segmenter.Sentences(text) {
		out = append(out, c.splitSentence(sentence.Text)...)
	}
	return out
}

// splitSentence cuts after every boundary token that is not the last token of the sentence.
func (c *ClauseSplitter) splitSentence(sentence string) []string {
	var out []string
	start := 0
	i := 0
	for i < len(sentence) {
		r, size := utf8.DecodeRuneInString(sentence[i:])
		if r == ';' {
			cut := skipTrailing(sentence, i+size)
			if hasMoreTokens(sentence, cut) {
				out = appendClause(out, sentence[start:cut])
				start = cut
			}
			i += size
			continue
		}
		if !isWordRune(r) {
			i += size
			continue
		}

		wordEnd := i
		for wordEnd < len(sentence) {
			wr, ws := utf8.DecodeRuneInString(sentence[wordEnd:])
			if !isWordRune(wr) {
				break
			}
			wordEnd += ws
		}
		if _, ok := c.boundaries[sentence[i:wordEnd]]; ok {
			cut := skipTrailing(sentence, wordEnd)
			if hasMoreTokens(sentence, cut) {
				out = appendClause(out, sentence[start:cut])
				start = cut
			}
		}
		i = wordEnd
	}
	return appendClause(out, sentence[start:])
}

// skipTrailing keeps commas that follow a boundary token with the clause it closes.
func skipTrailing(s string, i int) int {
	for i < len(s) && s[i] == ',' {
		i++
	}
	return i
}

func hasMoreTokens(s string, i int) bool {
	return strings.TrimFunc(s[i:], func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	}) != ""
}

func appendClause(out []string, clause string) []string {
	clause = strings.TrimSpace(clause)
	if clause == "" {
		return out
	}
	return append(out, clause)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r == '\''
}
