package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/clearframe/clearframe/internal/config"
	"github.com/clearframe/clearframe/internal/formatter"
)

var (
	configShow bool
)

// configEnvVars are reported by config --show when set.
var configEnvVars = []string{
	"CLEARFRAME_CONFIG",
	"CLEARFRAME_OUTPUT",
	"CLEARFRAME_ROOT",
	"CLEARFRAME_VERBOSE",
	"CLEARFRAME_LOG_LEVEL",
	"CLEARFRAME_LOG_FORMAT",
	"CLEARFRAME_INCOMING_DIR",
	"CLEARFRAME_RUNS_DIR",
	"CLEARFRAME_EXPLAIN",
	"CLEARFRAME_CONSULT_PROVIDER",
	"CLEARFRAME_LLM_PROVIDER",
	"CLEARFRAME_CONSULT_COMMAND",
	"CLEARFRAME_CONSULT_TIMEOUT",
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show resolved configuration",
	Long: `View clearframe configuration.

Configuration priority (highest to lowest):
  1. Command-line flags
  2. Environment variables (CLEARFRAME_*)
  3. Project config (.clearframe/config.yaml, or CLEARFRAME_CONFIG)
  4. Home config (~/.clearframe/config.yaml)
  5. Defaults

Environment variables:
  CLEARFRAME_OUTPUT           - Default output format (table, json, yaml)
  CLEARFRAME_ROOT             - Repository root holding tickets/
  CLEARFRAME_INCOMING_DIR     - Inbox directory (default: tickets/incoming)
  CLEARFRAME_RUNS_DIR         - Runs directory (default: tickets/runs)
  CLEARFRAME_EXPLAIN          - Explain mode by default (true/1)
  CLEARFRAME_CONSULT_PROVIDER - mock, command or none (CLEARFRAME_LLM_PROVIDER also accepted)
  CLEARFRAME_CONSULT_COMMAND  - CLI spawned by the command provider
  CLEARFRAME_CONSULT_TIMEOUT  - Consultation timeout (e.g. 30s)

Examples:
  clearframe config --show
  clearframe config --show -o json`,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().BoolVar(&configShow, "show", false, "Show resolved configuration with sources")
}

func runConfig(cmd *cobra.Command, args []string) error {
	if !configShow {
		return cmd.Help()
	}

	o := flagOverrides(cmd)
	resolved := config.Resolve(o.Output, o.Root, o.Verbose)
	return writeOutput(cmd.OutOrStdout(), resolved, func(w io.Writer) error {
		return renderResolved(w, resolved)
	})
}

func renderResolved(w io.Writer, rc *config.ResolvedConfig) error {
	fmt.Fprintln(w, "Config files:")
	if home, err := os.UserHomeDir(); err == nil {
		printConfigFile(w, "Home", filepath.Join(home, ".clearframe", "config.yaml"))
	}
	project := os.Getenv("CLEARFRAME_CONFIG")
	if project == "" {
		cwd, _ := os.Getwd()
		project = filepath.Join(cwd, ".clearframe", "config.yaml")
	}
	printConfigFile(w, "Project", project)
	fmt.Fprintln(w)

	tbl := formatter.NewTable(w, "KEY", "VALUE", "SOURCE")
	tbl.AddRow("output", rc.Output.Value, rc.Output.Source)
	tbl.AddRow("root", rc.Root.Value, rc.Root.Source)
	tbl.AddRow("verbose", rc.Verbose.Value, rc.Verbose.Source)
	tbl.AddRow("log.level", rc.LogLevel.Value, rc.LogLevel.Source)
	tbl.AddRow("log.format", rc.LogFormat.Value, rc.LogFormat.Source)
	tbl.AddRow("tickets.incoming_dir", rc.IncomingDir.Value, rc.IncomingDir.Source)
	tbl.AddRow("tickets.runs_dir", rc.RunsDir.Value, rc.RunsDir.Source)
	tbl.AddRow("consult.provider", rc.ConsultProvider.Value, rc.ConsultProvider.Source)
	tbl.AddRow("consult.command", rc.ConsultCommand.Value, rc.ConsultCommand.Source)
	if err := tbl.Render(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables (if set):")
	anySet := false
	for _, env := range configEnvVars {
		if v := os.Getenv(env); v != "" {
			fmt.Fprintf(w, "  %s=%s\n", env, v)
			anySet = true
		}
	}
	if !anySet {
		fmt.Fprintln(w, "  (none set)")
	}
	return nil
}

func printConfigFile(w io.Writer, label, path string) {
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(w, "  ✓ %-8s %s\n", label+":", path)
	} else {
		fmt.Fprintf(w, "  ✗ %-8s %s (not found)\n", label+":", path)
	}
}
