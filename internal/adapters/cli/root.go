// Package cli implements legalctl, which runs the analysis engines locally
// against files without the API, the queue or a database.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
	"github.com/kirillkom/legal-assistant/internal/core/ports"
	"github.com/kirillkom/legal-assistant/internal/core/qa"
)

// FileDecoder turns the bytes of a local file into plain text.
type FileDecoder interface {
	Decode(ctx context.Context, filename, mimeType string, raw []byte) (string, error)
}

type TextAnalyzer interface {
	AnalyzeText(ctx context.Context, text string) (*domain.DocumentAnalysis, error)
}

type Deps struct {
	Analyzer   TextAnalyzer
	Assessor   ports.RiskAssessor
	Entities   ports.EntityExtractor
	Clauses    ports.ClauseSplitter
	NewChunker func(overlap int) ports.Chunker
	NewSession func() *qa.Session
	Decoder    FileDecoder

	DefaultJurisdiction string
}

type rootOptions struct {
	output       string
	jurisdiction string
}

func NewRootCommand(deps Deps) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "legalctl",
		Short: "Analyze contracts locally: risk, questions, entities and clauses",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if opts.output != "text" && opts.output != "json" {
				return fmt.Errorf("invalid output format %q (must be text or json)", opts.output)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.output, "output", "o", "text", "output format (text, json)")
	pf.StringVarP(&opts.jurisdiction, "jurisdiction", "j", deps.DefaultJurisdiction, "jurisdiction for currency patterns and suggestions")

	cmd.AddCommand(
		newAnalyzeCmd(deps, opts),
		newAssessCmd(deps, opts),
		newAskCmd(deps, opts),
		newSuggestCmd(deps, opts),
		newEntitiesCmd(deps, opts),
		newClausesCmd(deps, opts),
	)
	return cmd
}

// readDocument loads a file, or stdin for "-", as plain text.
func readDocument(cmd *cobra.Command, decoder FileDecoder, path string) (string, error) {
	var (
		raw  []byte
		err  error
		name = path
	)
	if path == "-" {
		raw, err = io.ReadAll(cmd.InOrStdin())
		name = "stdin.txt"
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	text, err := decoder.Decode(cmd.Context(), filepath.Base(name), mime.TypeByExtension(filepath.Ext(name)), raw)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "read document", fmt.Errorf("%s contains no text", path))
	}
	return text, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
