package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/kirillkom/legal-assistant/internal/core/qa"
	"github.com/kirillkom/legal-assistant/internal/core/risk"
	"github.com/kirillkom/legal-assistant/internal/infrastructure/chunking"
	"github.com/kirillkom/legal-assistant/internal/infrastructure/entities"
	"github.com/kirillkom/legal-assistant/internal/infrastructure/summarizer"
)

// Engines are the in-process analysis components. They hold no per-document
// state and are shared by the API, the worker, the CLI and the MCP server.
type Engines struct {
	Segmenter  *chunking.SentenceSegmenter
	Clauses    *chunking.ClauseSplitter
	Assessor   *risk.Assessor
	QA         *qa.Engine
	Entities   *entities.Extractor
	Extractive *summarizer.Extractive
}

func NewEngines(logger *slog.Logger) (*Engines, error) {
	if logger == nil {
		logger = slog.Default()
	}
	segmenter := chunking.NewSentenceSegmenter()

	kb, err := risk.DefaultKnowledgeBase()
	if err != nil {
		return nil, fmt.Errorf("load risk knowledge base: %w", err)
	}
	assessor, err := risk.NewAssessor(kb, segmenter, risk.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("init risk assessor: %w", err)
	}
	qaEngine, err := qa.NewEngine(segmenter, qa.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("init qa engine: %w", err)
	}

	return &Engines{
		Segmenter:  segmenter,
		Clauses:    chunking.NewClauseSplitter(segmenter),
		Assessor:   assessor,
		QA:         qaEngine,
		Entities:   entities.NewExtractor(segmenter, logger),
		Extractive: summarizer.NewExtractive(segmenter, summarizer.DefaultMaxSentences, summarizer.DefaultMaxInputChars),
	}, nil
}

// NewSession returns a single-document QA session over the shared engine.
func (e *Engines) NewSession() *qa.Session {
	return qa.NewSession(e.QA)
}

// NewChunker windows clauses with the given overlap.
func (e *Engines) NewChunker(overlap int) *chunking.Splitter {
	return chunking.NewSplitter(e.Clauses, overlap)
}
