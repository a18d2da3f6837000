package cli

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
)

func newAnalyzeCmd(deps Deps, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <file|->",
		Short: "Run the full analysis: summary, entities, risk and clauses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readDocument(cmd, deps.Decoder, args[0])
			if err != nil {
				return err
			}
			analysis, err := deps.Analyzer.AnalyzeText(cmd.Context(), text)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.output == "json" {
				return printJSON(out, analysis)
			}
			fmt.Fprintf(out, "Document: %s\n", analysis.DocumentID)
			fmt.Fprintf(out, "\nSummary:\n%s\n\n", analysis.Summary)
			fmt.Fprintf(out, "Entities: %d in %d categories\n", analysis.EntityStats.Total, analysis.EntityStats.Categories)
			fmt.Fprintf(out, "Clauses: %d\n\n", len(analysis.Clauses))
			writeAssessment(out, analysis.Risk)
			return nil
		},
	}
}

func newAssessCmd(deps Deps, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "assess <file|->",
		Short: "Score the risk profile of a contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readDocument(cmd, deps.Decoder, args[0])
			if err != nil {
				return err
			}
			assessment := deps.Assessor.Assess(text)
			if opts.output == "json" {
				return printJSON(cmd.OutOrStdout(), assessment)
			}
			writeAssessment(cmd.OutOrStdout(), assessment)
			return nil
		},
	}
}

func writeAssessment(w io.Writer, a domain.RiskAssessment) {
	fmt.Fprintf(w, "Risk: %s (%.1f/10, confidence %.2f)\n", strings.ToUpper(string(a.RiskLevel)), a.OverallScore, a.Confidence)
	fmt.Fprintf(w, "%s\n", a.Summary)
	if len(a.RiskFactors) > 0 {
		fmt.Fprintln(w, "\nRisk factors:")
		for _, f := range a.RiskFactors {
			fmt.Fprintf(w, "  [%s] %s: %q\n", f.Level, f.Category, f.Text)
			fmt.Fprintf(w, "      %s\n", f.Explanation)
		}
	}
	if len(a.MissingClauses) > 0 {
		fmt.Fprintf(w, "\nMissing clauses: %s\n", strings.Join(a.MissingClauses, ", "))
	}
	if len(a.Recommendations) > 0 {
		fmt.Fprintln(w, "\nRecommendations:")
		for _, r := range a.Recommendations {
			fmt.Fprintf(w, "  - %s\n", r)
		}
	}
}

func newAskCmd(deps Deps, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <file> [question...]",
		Short: "Answer questions about a contract",
		Long: "Answer one question given on the command line, or read questions line by line\n" +
			"from stdin against the same loaded document when no question is given.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.TrimSpace(strings.Join(args[1:], " "))
			if args[0] == "-" && question == "" {
				return fmt.Errorf("a question is required when the document is read from stdin")
			}
			text, err := readDocument(cmd, deps.Decoder, args[0])
			if err != nil {
				return err
			}

			session := deps.NewSession()
			session.Load(text, deps.Entities.Extract(text))

			if question != "" {
				return answer(cmd, opts, session.Answer, question)
			}
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				q := strings.TrimSpace(scanner.Text())
				if q == "" {
					continue
				}
				if err := answer(cmd, opts, session.Answer, q); err != nil {
					return err
				}
			}
			return scanner.Err()
		},
	}
}

func answer(cmd *cobra.Command, opts *rootOptions, ask func(question, jurisdiction string) (domain.QAResult, error), question string) error {
	result, err := ask(question, opts.jurisdiction)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if opts.output == "json" {
		return printJSON(out, result)
	}
	fmt.Fprintf(out, "Q: %s\nA: %s\n   (confidence %.2f, %s)\n", result.Question, result.Answer, result.Confidence, result.Intent)
	return nil
}

func newSuggestCmd(deps Deps, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest",
		Short: "List suggested questions for the jurisdiction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			questions := deps.NewSession().SuggestedQuestions(opts.jurisdiction)
			if opts.output == "json" {
				return printJSON(cmd.OutOrStdout(), questions)
			}
			for _, q := range questions {
				fmt.Fprintln(cmd.OutOrStdout(), q)
			}
			return nil
		},
	}
}

func newEntitiesCmd(deps Deps, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "entities <file|->",
		Short: "Extract dates, amounts, parties and other legal entities",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readDocument(cmd, deps.Decoder, args[0])
			if err != nil {
				return err
			}
			set := deps.Entities.Extract(text)
			out := cmd.OutOrStdout()
			if opts.output == "json" {
				return printJSON(out, map[string]any{"entities": set, "stats": set.Stats()})
			}
			labels := make([]string, 0, len(set))
			for label := range set {
				labels = append(labels, label)
			}
			slices.Sort(labels)
			for _, label := range labels {
				fmt.Fprintf(out, "%s (%d)\n", label, len(set[label]))
				for _, e := range set[label] {
					if e.NormalizedValue != "" && e.NormalizedValue != e.Text {
						fmt.Fprintf(out, "  %s -> %s\n", e.Text, e.NormalizedValue)
						continue
					}
					fmt.Fprintf(out, "  %s\n", e.Text)
				}
			}
			return nil
		},
	}
}

func newClausesCmd(deps Deps, opts *rootOptions) *cobra.Command {
	var overlap int

	cmd := &cobra.Command{
		Use:   "clauses <file|->",
		Short: "Split a contract into clauses, or overlapping clause windows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readDocument(cmd, deps.Decoder, args[0])
			if err != nil {
				return err
			}
			var parts []string
			if overlap > 0 {
				parts = deps.NewChunker(overlap).Split(text)
			} else {
				parts = deps.Clauses.Clauses(text)
			}
			if opts.output == "json" {
				return printJSON(cmd.OutOrStdout(), parts)
			}
			for i, p := range parts {
				fmt.Fprintf(cmd.OutOrStdout(), "%3d. %s\n", i+1, p)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&overlap, "overlap", 0, "clauses shared between consecutive windows (0 prints single clauses)")
	return cmd
}
