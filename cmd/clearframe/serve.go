package main

import (
	"github.com/spf13/cobra"

	"github.com/clearframe/clearframe/internal/ledger"
	"github.com/clearframe/clearframe/internal/mcpserver"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the engine as an MCP server over stdio",
	Long: `Start an MCP server over stdin/stdout with these tools:

  analyze_text     Score a decision text
  replay_last_run  Replay the most recent run
  list_runs        List the run index

Logs go to stderr so stdout stays a clean protocol stream.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := currentConfig()
	if err != nil {
		return err
	}
	srv := mcpserver.NewServer(version, newEngine(cfg), ledger.New(cfg.RunsPath()))
	return srv.Run(cmd.Context())
}
