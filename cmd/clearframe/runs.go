package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/clearframe/clearframe/internal/formatter"
	"github.com/clearframe/clearframe/internal/ledger"
	"github.com/clearframe/clearframe/internal/types"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded runs",
	Long: `List the run index, oldest first.

Examples:
  clearframe runs
  clearframe runs -o json`,
	Args: cobra.NoArgs,
	RunE: runRuns,
}

func init() {
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	cfg, err := currentConfig()
	if err != nil {
		return err
	}
	records, err := ledger.New(cfg.RunsPath()).Records()
	if err != nil {
		return err
	}
	if records == nil {
		records = []types.RunRecord{}
	}
	return writeOutput(cmd.OutOrStdout(), records, func(w io.Writer) error {
		if len(records) == 0 {
			_, err := fmt.Fprintln(w, ledger.NoRunsMessage)
			return err
		}
		tbl := formatter.NewTable(w, "RUN", "PROCESSED", "PATH").AlignRight(1)
		for _, r := range records {
			tbl.AddRow(r.RunID, r.Processed, r.Path)
		}
		return tbl.Render()
	})
}
