package chunking

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
)

// Tokens that end with a period without ending a sentence. Compared lower-case
// with the trailing period stripped.
var defaultAbbreviations = []string{
	"mr", "mrs", "ms", "dr", "prof", "sr", "jr", "st",
	"inc", "ltd", "co", "corp", "pvt", "llc", "plc", "bros",
	"no", "nos", "vs", "v", "art", "sec", "secs", "cl", "para", "paras", "pp", "p",
	"e.g", "i.e", "etc", "cf", "approx", "viz", "al",
	"u.s", "u.k", "u.s.a", "u.a.e", "u.s.c", "c.f.r",
	"jan", "feb", "mar", "apr", "jun", "jul", "aug", "sep", "sept", "oct", "nov", "dec",
	"rs", "fig", "ch", "vol",
}

// SentenceSegmenter splits text into sentences with byte spans.
type SentenceSegmenter struct {
	abbreviations map[string]struct{}
}

func NewSentenceSegmenter(extraAbbreviations ...string) *SentenceSegmenter {
	abbr := make(map[string]struct{}, len(defaultAbbreviations)+len(extraAbbreviations))
	for _, a := range defaultAbbreviations {
		abbr[a] = struct{}{}
	}
	for _, a := range extraAbbreviations {
		a = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(a), "."))
		if a != "" {
			abbr[a] = struct{}{}
		}
	}
	return &SentenceSegmenter{abbreviations: abbr}
}

// Sentences returns trimmed, non-empty sentences in document order.
// A sentence ends at '.', '!' or '?' (plus closing quotes or brackets) followed by
// whitespace, or at a blank line.
func (s *SentenceSegmenter) Sentences(text string) []domain.Sentence {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	out := make([]domain.Sentence, 0, strings.Count(text, ".")+1)
	start := 0
	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])

		if r == '\n' && isBlankLineAt(text, i+size) {
			out = appendSentence(out, text, start, i)
			start = i + size
			i += size
			continue
		}

		if r != '.' && r != '!' && r != '?' {
			i += size
			continue
		}

		end := i + size
		for end < len(text) && strings.IndexByte(`.!?"')]`, text[end]) >= 0 {
			end++
		}
		if end < len(text) {
			next, _ := utf8.DecodeRuneInString(text[end:])
			if !unicode.IsSpace(next) {
				i = end
				continue
			}
		}
		if r == '.' && s.isAbbreviation(text, start, i) {
			i = end
			continue
		}
		if r == '.' && end < len(text) && startsLowercase(text[end:]) {
			i = end
			continue
		}

		out = appendSentence(out, text, start, end)
		start = end
		i = end
	}
	return appendSentence(out, text, start, len(text))
}

func (s *SentenceSegmenter) isAbbreviation(text string, sentenceStart, dot int) bool {
	wordStart := dot
	for wordStart > sentenceStart {
		r, size := utf8.DecodeLastRuneInString(text[:wordStart])
		if unicode.IsSpace(r) || r == '(' || r == '"' {
			break
		}
		wordStart -= size
	}
	word := strings.ToLower(text[wordStart:dot])
	if word == "" {
		return false
	}
	if _, ok := s.abbreviations[word]; ok {
		return true
	}
	// Single initials such as "J." in "J. Smith".
	if utf8.RuneCountInString(word) == 1 {
		r, _ := utf8.DecodeRuneInString(text[wordStart:dot])
		return unicode.IsUpper(r)
	}
	return false
}

func appendSentence(out []domain.Sentence, text string, start, end int) []domain.Sentence {
	if start >= end {
		return out
	}
	segment := text[start:end]
	trimmedLeft := strings.TrimLeftFunc(segment, unicode.IsSpace)
	start += len(segment) - len(trimmedLeft)
	trimmed := strings.TrimRightFunc(trimmedLeft, unicode.IsSpace)
	if trimmed == "" {
		return out
	}
	return append(out, domain.Sentence{
		Text:  trimmed,
		Start: start,
		End:   start + len(trimmed),
	})
}

func isBlankLineAt(text string, i int) bool {
	for i < len(text) {
		switch text[i] {
		case '\n':
			return true
		case ' ', '\t', '\r':
			i++
		default:
			return false
		}
	}
	return false
}

func startsLowercase(rest string) bool {
	rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
	if rest == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return unicode.IsLower(r)
}
