package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/clearframe/clearframe/internal/config"
	"github.com/clearframe/clearframe/internal/logging"
)

var (
	// Global flags
	verbose bool
	output  string
	cfgFile string
	rootDir string

	// appConfig is loaded once per invocation by the root pre-run hook.
	appConfig *config.Config
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "clearframe",
	Short: "Sunk-cost ticket pipeline",
	Long: `clearframe reads decision tickets, scores each one for sunk-cost
reasoning and runs a dry-run plan per ticket in a sandboxed workspace.

Core Commands:
  run       Process every pending ticket once
  replay    Show the most recent run
  runs      List recorded runs
  analyze   Score a single text
  serve     Expose the engine as an MCP server over stdio
  config    Show resolved configuration
  version   Show version information

Tickets live in tickets/incoming; each run writes tickets/runs/<run-id>/
and appends to tickets/runs/index.json.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		syncConfigFlagToEnv()
		cfg, err := config.Load(flagOverrides(cmd))
		if err != nil {
			return err
		}
		appConfig = cfg
		initLogging(cfg)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "Output format (json, table, yaml)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: .clearframe/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "Repository root holding the tickets/ tree")
}

// flagOverrides turns explicitly set persistent flags into a config layer.
// Unset flags must not shadow env or file values.
func flagOverrides(cmd *cobra.Command) *config.Config {
	o := &config.Config{}
	flags := cmd.Flags()
	if flags.Changed("output") {
		o.Output = output
	}
	if flags.Changed("root") {
		o.Root = rootDir
	}
	o.Verbose = verbose
	return o
}

func initLogging(cfg *config.Config) {
	level := logging.ParseLevel(cfg.Log.Level)
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logging.Init(level, cfg.Log.Format, os.Stderr)
}

// currentConfig returns the loaded config, loading defaults when a command
// runs without the root pre-run hook.
func currentConfig() (*config.Config, error) {
	if appConfig != nil {
		return appConfig, nil
	}
	cfg, err := config.Load(nil)
	if err != nil {
		return nil, err
	}
	appConfig = cfg
	return cfg, nil
}

// GetOutput returns the output format for use by subcommands.
func GetOutput() string {
	if appConfig != nil {
		return appConfig.Output
	}
	return output
}

// GetConfigFile returns the config file path for use by subcommands.
func GetConfigFile() string {
	return cfgFile
}

func syncConfigFlagToEnv() {
	path := strings.TrimSpace(GetConfigFile())
	if path == "" {
		return
	}
	_ = os.Setenv("CLEARFRAME_CONFIG", path)
}
