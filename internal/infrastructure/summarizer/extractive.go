// Package summarizer produces short narrative summaries of contract text.
package summarizer

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/legal-assistant/internal/core/ports"
)

const (
	EmptyInputMessage = "Input text is empty. Please provide valid text for summarization."

	DefaultMaxSentences  = 3
	DefaultMaxInputChars = 5000
)

// Extractive keeps the leading sentences of the document.
type Extractive struct {
	segmenter     ports.SentenceSegmenter
	maxSentences  int
	maxInputChars int
}

func NewExtractive(segmenter ports.SentenceSegmenter, maxSentences, maxInputChars int) *Extractive {
	if maxSentences <= 0 {
		maxSentences = DefaultMaxSentences
	}
	if maxInputChars <= 0 {
		maxInputChars = DefaultMaxInputChars
	}
	return &Extractive{
		segmenter:     segmenter,
		maxSentences:  maxSentences,
		maxInputChars: maxInputChars,
	}
}

func (e *Extractive) Summarize(_ context.Context, text string) (string, error) {
	text = TruncateChars(strings.TrimSpace(text), e.maxInputChars)
	if text == "" {
		return EmptyInputMessage, nil
	}

	sentences := e.segmenter.Sentences(text)
	parts := make([]string, 0, e.maxSentences)
	for _, s := range sentences[:min(len(sentences), e.maxSentences)] {
		parts = append(parts, s.Text)
	}
	return strings.Join(parts, " "), nil
}

// TruncateChars cuts text to at most limit runes.
func TruncateChars(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	i := 0
	for range limit {
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	return text[:i]
}

// Fallback tries the primary summarizer and degrades to the secondary on error.
type Fallback struct {
	primary   ports.Summarizer
	secondary ports.Summarizer
	logger    *slog.Logger
}

func NewFallback(primary, secondary ports.Summarizer, logger *slog.Logger) *Fallback {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fallback{primary: primary, secondary: secondary, logger: logger}
}

func (f *Fallback) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return EmptyInputMessage, nil
	}
	summary, err := f.primary.Summarize(ctx, text)
	if err == nil && strings.TrimSpace(summary) != "" {
		return summary, nil
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	f.logger.Warn("summarizer_fallback", "error", err)
	return f.secondary.Summarize(ctx, text)
}
