package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/clearframe/clearframe/internal/formatter"
	"github.com/clearframe/clearframe/internal/ticket"
	"github.com/clearframe/clearframe/internal/types"
)

var analyzeExplain bool

// errNoText is returned when analyze gets neither arguments nor stdin.
var errNoText = errors.New("no text to analyze")

var analyzeCmd = &cobra.Command{
	Use:   "analyze [text...]",
	Short: "Score a single text",
	Long: `Score one decision text for sunk-cost reasoning without touching
the ticket tree. Arguments are joined with spaces; with no arguments the
text is read from stdin.

Examples:
  clearframe analyze "We've already spent too much to stop now"
  echo "I have to finish what I started" | clearframe analyze --explain`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().BoolVar(&analyzeExplain, "explain", false, "Add reasoning, intervention text and a counterfactual question")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := currentConfig()
	if err != nil {
		return err
	}

	text := strings.Join(args, " ")
	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = string(data)
	}
	if strings.TrimSpace(text) == "" {
		return errNoText
	}

	a := newEngine(cfg).Analyze(cmd.Context(), text, analyzeExplain || cfg.Engine.Explain)
	a.BiasType, a.SignalStrength = ticket.ClassifyBias(text, "")

	return writeOutput(cmd.OutOrStdout(), a, func(w io.Writer) error {
		return renderAnalysis(w, a)
	})
}

func renderAnalysis(w io.Writer, a types.Analysis) error {
	tbl := formatter.NewTable(w, "FIELD", "VALUE").SetMaxWidth(1, 100)
	tbl.AddRow("classification", a.Classification)
	tbl.AddRow("signal", strconv.FormatFloat(a.Signal, 'f', 2, 64))
	tbl.AddRow("intervention", a.Intervention)
	tbl.AddRow("bias", a.BiasType)
	if a.Heuristic != "" {
		tbl.AddRow("heuristic", a.Heuristic)
	}
	if a.Reasoning != "" {
		tbl.AddRow("reasoning", a.Reasoning)
	}
	if a.InterventionText != "" {
		tbl.AddRow("intervention text", a.InterventionText)
	}
	if a.Counterfactual != "" {
		tbl.AddRow("counterfactual", a.Counterfactual)
	}
	if a.Extract != nil {
		tbl.AddRow("decision", a.Extract.CoreDecision)
	}
	if a.Suggestion != nil {
		tbl.AddRow("consulted", a.Suggestion.Rationale)
	}
	return tbl.Render()
}
