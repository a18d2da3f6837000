package bootstrap

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/legal-assistant/internal/config"
	"github.com/kirillkom/legal-assistant/internal/core/domain"
	"github.com/kirillkom/legal-assistant/internal/core/usecase"
	"github.com/kirillkom/legal-assistant/internal/infrastructure/summarizer"
)

func TestNewEnginesAreUsable(t *testing.T) {
	engines, err := NewEngines(nil)
	if err != nil {
		t.Fatalf("NewEngines() error = %v", err)
	}

	text := "The Supplier shall indemnify the Buyer from and against all claims. The Buyer shall pay $5,000 within 30 days."
	assessment := engines.Assessor.Assess(text)
	if assessment.OverallScore < 1 || assessment.OverallScore > 10 {
		t.Fatalf("score out of range: %v", assessment.OverallScore)
	}

	session := engines.NewSession()
	if _, err := session.Answer("How much?", "US"); !domain.IsKind(err, domain.ErrDocumentNotLoaded) {
		t.Fatalf("expected ErrDocumentNotLoaded before Load, got %v", err)
	}
	session.Load(text, engines.Entities.Extract(text))
	result, err := session.Answer("How much is the payment?", "US")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if !strings.Contains(result.Answer, "$5,000") {
		t.Fatalf("expected the amount in the answer, got %q", result.Answer)
	}

	if chunks := engines.NewChunker(1).Split(text); len(chunks) == 0 {
		t.Fatalf("expected clause chunks")
	}
}

func TestAnalyzeLongTextFindsRiskAtTheEnd(t *testing.T) {
	engines, err := NewEngines(nil)
	if err != nil {
		t.Fatalf("NewEngines() error = %v", err)
	}
	analyzer := usecase.NewAnalyzeTextUseCase(usecase.AnalyzeDeps{
		Entities:   engines.Entities,
		Assessor:   engines.Assessor,
		Summarizer: engines.Extractive,
		Clauses:    engines.Clauses,
	})

	text := strings.Repeat("The supplier shall deliver the goods on Monday. ", 2200) +
		"The Supplier accepts unlimited liability for all claims."
	if len(text) <= 100000 {
		t.Fatalf("fixture must exceed the request cap, got %d chars", len(text))
	}

	got, err := analyzer.AnalyzeText(context.Background(), text)
	if err != nil {
		t.Fatalf("AnalyzeText() error = %v", err)
	}
	direct := engines.Assessor.Assess(text)
	if len(got.Risk.RiskFactors) != 1 || got.Risk.OverallScore != direct.OverallScore {
		t.Fatalf("analysis diverged from direct assessment: %d factors, score %v vs %v",
			len(got.Risk.RiskFactors), got.Risk.OverallScore, direct.OverallScore)
	}
	if len(got.Summary) > summarizer.DefaultMaxInputChars {
		t.Fatalf("summary must stay bounded, got %d chars", len(got.Summary))
	}
}

func TestNewSummarizerWithoutModelIsExtractive(t *testing.T) {
	engines, err := NewEngines(nil)
	if err != nil {
		t.Fatalf("NewEngines() error = %v", err)
	}
	got := newSummarizer(config.Config{}, engines, nil, nil)
	if _, ok := got.(*summarizer.Extractive); !ok {
		t.Fatalf("expected extractive summarizer, got %T", got)
	}

	got = newSummarizer(config.Config{OllamaURL: "http://127.0.0.1:1", OllamaModel: "m"}, engines, nil, nil)
	summary, err := got.Summarize(context.Background(), "First sentence here. Second one.")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if !strings.HasPrefix(summary, "First sentence here.") {
		t.Fatalf("expected extractive fallback summary, got %q", summary)
	}
}

func TestResilienceConfigFromEnvironmentSettings(t *testing.T) {
	cfg := ResilienceConfig(config.Config{
		ResilienceRetryMaxAttempts:      4,
		ResilienceRetryInitialBackoffMS: 50,
		ResilienceBreakerEnabled:        true,
		ResilienceBreakerMinRequests:    -3,
		ResilienceBreakerOpenTimeoutMS:  1000,
	})
	if cfg.RetryMaxAttempts != 4 || cfg.RetryInitialBackoff != 50*time.Millisecond {
		t.Fatalf("unexpected retry settings: %+v", cfg)
	}
	if cfg.BreakerMinRequests != 0 || cfg.BreakerOpenTimeout != time.Second {
		t.Fatalf("unexpected breaker settings: %+v", cfg)
	}
}
