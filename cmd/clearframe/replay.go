package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/clearframe/clearframe/internal/ledger"
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Show the most recent run",
	Long: `Replay the most recent run that produced artifacts.

The run is taken from tickets/runs/index.json; when the index is missing or
its last run has no artifacts, run directories are scanned newest first.
Replay never writes.

Examples:
  clearframe replay
  clearframe replay -o yaml`,
	Args: cobra.NoArgs,
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := currentConfig()
	if err != nil {
		return err
	}
	r, err := ledger.New(cfg.RunsPath()).Replay()
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), r, func(w io.Writer) error {
		return r.Render(w)
	})
}
