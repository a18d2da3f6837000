package ollama

import "github.com/kirillkom/legal-assistant/internal/infrastructure/summarizer"

func buildSummaryPrompt(text string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = summarizer.DefaultMaxInputChars
	}
	return `You summarize legal contracts for non-lawyers.
Write three to five plain sentences covering the parties, the main obligations, payment and term.
Do not give legal advice. No markdown.

Contract:
` + summarizer.TruncateChars(text, maxChars)
}
