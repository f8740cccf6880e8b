// Package config provides configuration management for clearframe.
// Configuration is loaded from (highest to lowest priority):
// 1. Command-line flags
// 2. Environment variables (CLEARFRAME_*)
// 3. Project config (.clearframe/config.yaml in cwd, or CLEARFRAME_CONFIG)
// 4. Home config (~/.clearframe/config.yaml)
// 5. Defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all clearframe configuration.
type Config struct {
	// Output controls the default output format (table, json, yaml).
	Output string `yaml:"output" json:"output"`

	// Root is the repository root that holds the tickets/ tree.
	Root string `yaml:"root" json:"root"`

	// Verbose enables debug logging.
	Verbose bool `yaml:"verbose" json:"verbose"`

	// Log settings
	Log LogConfig `yaml:"log" json:"log"`

	// Tickets settings (directory contract, relative to Root unless absolute)
	Tickets TicketsConfig `yaml:"tickets" json:"tickets"`

	// Engine settings
	Engine EngineConfig `yaml:"engine" json:"engine"`

	// Consult settings for the external reasoning capability
	Consult ConsultConfig `yaml:"consult" json:"consult"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error. Default: info.
	Level string `yaml:"level" json:"level"`

	// Format is text or json. Default: text.
	Format string `yaml:"format" json:"format"`
}

// TicketsConfig holds the inbox and run directory locations.
type TicketsConfig struct {
	// IncomingDir holds pending ticket files.
	// Default: tickets/incoming
	IncomingDir string `yaml:"incoming_dir" json:"incoming_dir"`

	// RunsDir holds one directory per loop invocation plus index.json.
	// Default: tickets/runs
	RunsDir string `yaml:"runs_dir" json:"runs_dir"`
}

// EngineConfig holds signal engine settings.
type EngineConfig struct {
	// Explain turns on explain mode (reasoning, intervention text, consultation).
	Explain bool `yaml:"explain" json:"explain"`

	// Gate holds the conservative gate thresholds.
	Gate GateConfig `yaml:"gate" json:"gate"`
}

// GateConfig holds conservative gate thresholds. A threshold left out of a
// config file keeps the lower layer's value; an explicit 0 is honoured.
type GateConfig struct {
	SilenceBelow   float64 `yaml:"silence_below" json:"silence_below"`
	ForceYesAt     float64 `yaml:"force_yes_at" json:"force_yes_at"`
	HedgeUpAt      float64 `yaml:"hedge_up_at" json:"hedge_up_at"`
	HedgeDownBelow float64 `yaml:"hedge_down_below" json:"hedge_down_below"`
	DowngradeBelow float64 `yaml:"downgrade_below" json:"downgrade_below"`

	// set marks thresholds present in the decoded file, in thresholds() order.
	set uint8
}

// gateFile distinguishes absent thresholds from explicit zeros.
type gateFile struct {
	SilenceBelow   *float64 `yaml:"silence_below"`
	ForceYesAt     *float64 `yaml:"force_yes_at"`
	HedgeUpAt      *float64 `yaml:"hedge_up_at"`
	HedgeDownBelow *float64 `yaml:"hedge_down_below"`
	DowngradeBelow *float64 `yaml:"downgrade_below"`
}

// UnmarshalYAML records which thresholds the file sets.
func (g *GateConfig) UnmarshalYAML(node *yaml.Node) error {
	var f gateFile
	if err := node.Decode(&f); err != nil {
		return err
	}
	g.set = 0
	dst := g.thresholds()
	for i, v := range []*float64{f.SilenceBelow, f.ForceYesAt, f.HedgeUpAt, f.HedgeDownBelow, f.DowngradeBelow} {
		if v != nil {
			*dst[i] = *v
			g.set |= 1 << i
		}
	}
	return nil
}

func (g *GateConfig) thresholds() []*float64 {
	return []*float64{&g.SilenceBelow, &g.ForceYesAt, &g.HedgeUpAt, &g.HedgeDownBelow, &g.DowngradeBelow}
}

// ConsultConfig selects and configures the external reasoning capability.
type ConsultConfig struct {
	// Provider is mock (default), command, or none.
	Provider string `yaml:"provider" json:"provider"`

	// Command is the CLI spawned by the command provider.
	// Default: "claude".
	Command string `yaml:"command" json:"command"`

	// Args are passed to Command before the prompt is written to stdin.
	// Default: ["-p"].
	Args []string `yaml:"args" json:"args"`

	// Timeout bounds one consultation. Default: 30s.
	Timeout string `yaml:"timeout" json:"timeout"`
}

// Default config values (used in resolution and validation).
const (
	defaultOutput         = "table"
	defaultRoot           = "."
	defaultLogLevel       = "info"
	defaultLogFormat      = "text"
	defaultIncomingDir    = "tickets/incoming"
	defaultRunsDir        = "tickets/runs"
	defaultConsultCommand = "claude"
	defaultConsultTimeout = "30s"

	ProviderMock    = "mock"
	ProviderCommand = "command"
	ProviderNone    = "none"
)

// Default gate thresholds.
const (
	DefaultSilenceBelow   = 0.35
	DefaultForceYesAt     = 0.85
	DefaultHedgeUpAt      = 0.75
	DefaultHedgeDownBelow = 0.65
	DefaultDowngradeBelow = 0.50
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Output:  defaultOutput,
		Root:    defaultRoot,
		Verbose: false,
		Log: LogConfig{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Tickets: TicketsConfig{
			IncomingDir: defaultIncomingDir,
			RunsDir:     defaultRunsDir,
		},
		Engine: EngineConfig{
			Gate: GateConfig{
				SilenceBelow:   DefaultSilenceBelow,
				ForceYesAt:     DefaultForceYesAt,
				HedgeUpAt:      DefaultHedgeUpAt,
				HedgeDownBelow: DefaultHedgeDownBelow,
				DowngradeBelow: DefaultDowngradeBelow,
			},
		},
		Consult: ConsultConfig{
			Provider: ProviderMock,
			Command:  defaultConsultCommand,
			Args:     []string{"-p"},
			Timeout:  defaultConsultTimeout,
		},
	}
}

// Load loads configuration with proper precedence.
// Priority: flags > env > project > home > defaults
func Load(flagOverrides *Config) (*Config, error) {
	cfg := Default()

	// Load home config
	homeConfig, _ := loadFromPath(homeConfigPath())
	if homeConfig != nil {
		cfg = merge(cfg, homeConfig)
	}

	// Load project config; an explicit path that does not parse is an error
	projectPath := projectConfigPath()
	projectConfig, err := loadFromPath(projectPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load config %s: %w", projectPath, err)
	}
	if projectConfig != nil {
		cfg = merge(cfg, projectConfig)
	}

	// Apply environment variables
	cfg = applyEnv(cfg)

	// Apply flag overrides
	if flagOverrides != nil {
		cfg = merge(cfg, flagOverrides)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	switch c.Output {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidOutput, c.Output)
	}
	switch c.Consult.Provider {
	case ProviderMock, ProviderCommand, ProviderNone:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, c.Consult.Provider)
	}
	g := c.Engine.Gate
	for _, v := range []float64{g.SilenceBelow, g.ForceYesAt, g.HedgeUpAt, g.HedgeDownBelow, g.DowngradeBelow} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: %v", ErrThresholdRange, v)
		}
	}
	if g.SilenceBelow > g.DowngradeBelow || g.DowngradeBelow > g.HedgeDownBelow ||
		g.HedgeDownBelow > g.HedgeUpAt || g.HedgeUpAt > g.ForceYesAt {
		return ErrThresholdOrder
	}
	if _, err := time.ParseDuration(c.Consult.Timeout); err != nil {
		return fmt.Errorf("consult.timeout: %w", err)
	}
	return nil
}

// IncomingPath returns the absolute-or-root-relative inbox directory.
func (c *Config) IncomingPath() string {
	return c.underRoot(c.Tickets.IncomingDir)
}

// RunsPath returns the absolute-or-root-relative runs directory.
func (c *Config) RunsPath() string {
	return c.underRoot(c.Tickets.RunsDir)
}

func (c *Config) underRoot(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, p)
}

// ConsultTimeout returns the parsed consult timeout, falling back to 30s.
func (c *Config) ConsultTimeout() time.Duration {
	d, err := time.ParseDuration(c.Consult.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// homeConfigPath returns the home config path.
func homeConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".clearframe", "config.yaml")
}

// projectConfigPath returns the project config path.
func projectConfigPath() string {
	if override := strings.TrimSpace(os.Getenv("CLEARFRAME_CONFIG")); override != "" {
		return override
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Join(cwd, ".clearframe", "config.yaml")
}

// loadFromPath loads config from a YAML file.
func loadFromPath(path string) (*Config, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnv applies environment variable overrides.
func applyEnv(cfg *Config) *Config {
	if v := os.Getenv("CLEARFRAME_OUTPUT"); v != "" {
		cfg.Output = v
	}
	if v := os.Getenv("CLEARFRAME_ROOT"); v != "" {
		cfg.Root = v
	}
	if b, ok := getEnvBool("CLEARFRAME_VERBOSE"); ok {
		cfg.Verbose = b
	}
	if v := os.Getenv("CLEARFRAME_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("CLEARFRAME_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("CLEARFRAME_INCOMING_DIR"); v != "" {
		cfg.Tickets.IncomingDir = v
	}
	if v := os.Getenv("CLEARFRAME_RUNS_DIR"); v != "" {
		cfg.Tickets.RunsDir = v
	}
	if b, ok := getEnvBool("CLEARFRAME_EXPLAIN"); ok {
		cfg.Engine.Explain = b
	}
	// CLEARFRAME_LLM_PROVIDER is the older name for the provider switch.
	if v := os.Getenv("CLEARFRAME_LLM_PROVIDER"); v != "" {
		cfg.Consult.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("CLEARFRAME_CONSULT_PROVIDER"); v != "" {
		cfg.Consult.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("CLEARFRAME_CONSULT_COMMAND"); v != "" {
		cfg.Consult.Command = v
	}
	if v := os.Getenv("CLEARFRAME_CONSULT_TIMEOUT"); v != "" {
		cfg.Consult.Timeout = v
	}
	return cfg
}

// mergeStr overwrites dst with src when src is non-empty.
func mergeStr(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

// mergeFloat overwrites dst with src when src is non-zero.
// Thresholds decoded from a file bypass it so an explicit 0 still applies.
func mergeFloat(dst *float64, src float64) {
	if src != 0 {
		*dst = src
	}
}

// merge merges src into dst, with src values taking precedence.
// Booleans only ever switch on through merge; env can switch them off.
func merge(dst, src *Config) *Config {
	mergeStr(&dst.Output, src.Output)
	mergeStr(&dst.Root, src.Root)
	if src.Verbose {
		dst.Verbose = true
	}

	mergeStr(&dst.Log.Level, src.Log.Level)
	mergeStr(&dst.Log.Format, src.Log.Format)
	mergeStr(&dst.Tickets.IncomingDir, src.Tickets.IncomingDir)
	mergeStr(&dst.Tickets.RunsDir, src.Tickets.RunsDir)
	mergeEngine(&dst.Engine, &src.Engine)
	mergeConsult(&dst.Consult, &src.Consult)

	return dst
}

// mergeEngine merges engine-specific config fields.
func mergeEngine(dst, src *EngineConfig) {
	if src.Explain {
		dst.Explain = true
	}
	d, sv := dst.Gate.thresholds(), src.Gate.thresholds()
	for i := range d {
		if src.Gate.set&(1<<i) != 0 {
			*d[i] = *sv[i]
			continue
		}
		mergeFloat(d[i], *sv[i])
	}
}

// mergeConsult merges consult-specific config fields.
func mergeConsult(dst, src *ConsultConfig) {
	mergeStr(&dst.Provider, strings.ToLower(src.Provider))
	mergeStr(&dst.Command, src.Command)
	if len(src.Args) > 0 {
		dst.Args = append([]string(nil), src.Args...)
	}
	mergeStr(&dst.Timeout, src.Timeout)
}

// Source represents where a config value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceHome    Source = "~/.clearframe/config.yaml"
	SourceProject Source = ".clearframe/config.yaml"
	SourceEnv     Source = "environment"
	SourceFlag    Source = "flag"
)

// getEnvString returns the value and whether the env var was set.
func getEnvString(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

// getEnvBool returns the boolean value and whether it was recognized.
func getEnvBool(key string) (bool, bool) {
	switch strings.ToLower(os.Getenv(key)) {
	case "true", "1":
		return true, true
	case "false", "0":
		return false, true
	}
	return false, false
}

// resolveStringField resolves a string through the precedence chain.
// Returns the resolved value and its source.
func resolveStringField(home, project, env, flag, def string) resolved {
	result := resolved{Value: def, Source: SourceDefault}

	if home != "" {
		result = resolved{Value: home, Source: SourceHome}
	}
	if project != "" {
		result = resolved{Value: project, Source: SourceProject}
	}
	if env != "" {
		result = resolved{Value: env, Source: SourceEnv}
	}
	if flag != "" {
		result = resolved{Value: flag, Source: SourceFlag}
	}

	return result
}

// ResolvedConfig shows config values with their sources.
type ResolvedConfig struct {
	Output          resolved `json:"output" yaml:"output"`
	Root            resolved `json:"root" yaml:"root"`
	Verbose         resolved `json:"verbose" yaml:"verbose"`
	LogLevel        resolved `json:"log_level" yaml:"log_level"`
	LogFormat       resolved `json:"log_format" yaml:"log_format"`
	IncomingDir     resolved `json:"incoming_dir" yaml:"incoming_dir"`
	RunsDir         resolved `json:"runs_dir" yaml:"runs_dir"`
	ConsultProvider resolved `json:"consult_provider" yaml:"consult_provider"`
	ConsultCommand  resolved `json:"consult_command" yaml:"consult_command"`
}

type resolved struct {
	Value  interface{} `json:"value" yaml:"value"`
	Source Source      `json:"source" yaml:"source"`
}

// fileValues pulls the resolvable string fields out of an optional config file.
type fileValues struct {
	output, root, logLevel, logFormat, incoming, runs, provider, command string
	verbose                                                              bool
}

func valuesOf(cfg *Config) fileValues {
	if cfg == nil {
		return fileValues{}
	}
	return fileValues{
		output:    cfg.Output,
		root:      cfg.Root,
		logLevel:  cfg.Log.Level,
		logFormat: cfg.Log.Format,
		incoming:  cfg.Tickets.IncomingDir,
		runs:      cfg.Tickets.RunsDir,
		provider:  cfg.Consult.Provider,
		command:   cfg.Consult.Command,
		verbose:   cfg.Verbose,
	}
}

// Resolve returns configuration with source tracking.
// Uses precedence chain: flags > env > project > home > defaults.
func Resolve(flagOutput, flagRoot string, flagVerbose bool) *ResolvedConfig {
	homeConfig, _ := loadFromPath(homeConfigPath())
	projectConfig, _ := loadFromPath(projectConfigPath())
	home := valuesOf(homeConfig)
	project := valuesOf(projectConfig)

	envOutput, _ := getEnvString("CLEARFRAME_OUTPUT")
	envRoot, _ := getEnvString("CLEARFRAME_ROOT")
	envVerbose, envVerboseSet := getEnvBool("CLEARFRAME_VERBOSE")
	envLogLevel, _ := getEnvString("CLEARFRAME_LOG_LEVEL")
	envLogFormat, _ := getEnvString("CLEARFRAME_LOG_FORMAT")
	envIncoming, _ := getEnvString("CLEARFRAME_INCOMING_DIR")
	envRuns, _ := getEnvString("CLEARFRAME_RUNS_DIR")
	envProvider, _ := getEnvString("CLEARFRAME_LLM_PROVIDER")
	if v, ok := getEnvString("CLEARFRAME_CONSULT_PROVIDER"); ok {
		envProvider = v
	}
	envCommand, _ := getEnvString("CLEARFRAME_CONSULT_COMMAND")

	rc := &ResolvedConfig{
		Output:          resolveStringField(home.output, project.output, envOutput, flagOutput, defaultOutput),
		Root:            resolveStringField(home.root, project.root, envRoot, flagRoot, defaultRoot),
		Verbose:         resolved{Value: false, Source: SourceDefault},
		LogLevel:        resolveStringField(home.logLevel, project.logLevel, envLogLevel, "", defaultLogLevel),
		LogFormat:       resolveStringField(home.logFormat, project.logFormat, envLogFormat, "", defaultLogFormat),
		IncomingDir:     resolveStringField(home.incoming, project.incoming, envIncoming, "", defaultIncomingDir),
		RunsDir:         resolveStringField(home.runs, project.runs, envRuns, "", defaultRunsDir),
		ConsultProvider: resolveStringField(home.provider, project.provider, envProvider, "", ProviderMock),
		ConsultCommand:  resolveStringField(home.command, project.command, envCommand, "", defaultConsultCommand),
	}

	// Resolve verbose (boolean with OR semantics through chain)
	if home.verbose {
		rc.Verbose = resolved{Value: true, Source: SourceHome}
	}
	if project.verbose {
		rc.Verbose = resolved{Value: true, Source: SourceProject}
	}
	if envVerboseSet {
		rc.Verbose = resolved{Value: envVerbose, Source: SourceEnv}
	}
	if flagVerbose {
		rc.Verbose = resolved{Value: true, Source: SourceFlag}
	}

	return rc
}
