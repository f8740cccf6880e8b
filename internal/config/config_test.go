package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolate points HOME, cwd-independent config and all CLEARFRAME_* vars away
// from the developer machine.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("CLEARFRAME_CONFIG", filepath.Join(home, "absent.yaml"))
	for _, key := range []string{
		"CLEARFRAME_OUTPUT", "CLEARFRAME_ROOT", "CLEARFRAME_VERBOSE",
		"CLEARFRAME_LOG_LEVEL", "CLEARFRAME_LOG_FORMAT",
		"CLEARFRAME_INCOMING_DIR", "CLEARFRAME_RUNS_DIR", "CLEARFRAME_EXPLAIN",
		"CLEARFRAME_LLM_PROVIDER", "CLEARFRAME_CONSULT_PROVIDER",
		"CLEARFRAME_CONSULT_COMMAND", "CLEARFRAME_CONSULT_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
	return home
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Output != "table" {
		t.Errorf("Default Output = %q, want %q", cfg.Output, "table")
	}
	if cfg.Tickets.IncomingDir != "tickets/incoming" {
		t.Errorf("Default IncomingDir = %q", cfg.Tickets.IncomingDir)
	}
	if cfg.Tickets.RunsDir != "tickets/runs" {
		t.Errorf("Default RunsDir = %q", cfg.Tickets.RunsDir)
	}
	if cfg.Engine.Explain {
		t.Error("Default Explain = true, want false")
	}
	if cfg.Consult.Provider != ProviderMock {
		t.Errorf("Default Provider = %q, want mock", cfg.Consult.Provider)
	}
	g := cfg.Engine.Gate
	if g.SilenceBelow != 0.35 || g.ForceYesAt != 0.85 || g.HedgeUpAt != 0.75 ||
		g.HedgeDownBelow != 0.65 || g.DowngradeBelow != 0.50 {
		t.Errorf("Default gate thresholds = %+v", g)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

func TestMerge(t *testing.T) {
	dst := Default()
	src := &Config{
		Output: "json",
		Root:   "/custom/root",
		Engine: EngineConfig{Gate: GateConfig{ForceYesAt: 0.9}},
	}

	result := merge(dst, src)

	if result.Output != "json" {
		t.Errorf("merge Output = %q, want %q", result.Output, "json")
	}
	if result.Root != "/custom/root" {
		t.Errorf("merge Root = %q", result.Root)
	}
	if result.Engine.Gate.ForceYesAt != 0.9 {
		t.Errorf("merge ForceYesAt = %v, want 0.9", result.Engine.Gate.ForceYesAt)
	}
	// Defaults should be preserved when not overridden
	if result.Engine.Gate.SilenceBelow != DefaultSilenceBelow {
		t.Errorf("merge preserved SilenceBelow = %v", result.Engine.Gate.SilenceBelow)
	}
	if result.Tickets.RunsDir != "tickets/runs" {
		t.Errorf("merge preserved RunsDir = %q", result.Tickets.RunsDir)
	}
}

func TestApplyEnv(t *testing.T) {
	isolate(t)
	t.Setenv("CLEARFRAME_OUTPUT", "yaml")
	t.Setenv("CLEARFRAME_VERBOSE", "true")
	t.Setenv("CLEARFRAME_EXPLAIN", "1")
	t.Setenv("CLEARFRAME_LLM_PROVIDER", "NONE")

	cfg := applyEnv(Default())

	if cfg.Output != "yaml" {
		t.Errorf("applyEnv Output = %q, want %q", cfg.Output, "yaml")
	}
	if !cfg.Verbose {
		t.Error("applyEnv Verbose = false, want true")
	}
	if !cfg.Engine.Explain {
		t.Error("applyEnv Explain = false, want true")
	}
	if cfg.Consult.Provider != ProviderNone {
		t.Errorf("legacy provider env not applied: %q", cfg.Consult.Provider)
	}
}

func TestApplyEnv_ProviderPrecedence(t *testing.T) {
	isolate(t)
	t.Setenv("CLEARFRAME_LLM_PROVIDER", "none")
	t.Setenv("CLEARFRAME_CONSULT_PROVIDER", "command")

	cfg := applyEnv(Default())
	if cfg.Consult.Provider != ProviderCommand {
		t.Errorf("CLEARFRAME_CONSULT_PROVIDER should win, got %q", cfg.Consult.Provider)
	}
}

func TestLoadFromPath(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `
output: json
root: /srv/clearframe
tickets:
  incoming_dir: inbox
engine:
  explain: true
  gate:
    force_yes_at: 0.9
consult:
  provider: command
  args: ["--print", "--quiet"]
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadFromPath(configPath)
	if err != nil {
		t.Fatalf("loadFromPath() error = %v", err)
	}
	if cfg.Output != "json" || cfg.Root != "/srv/clearframe" {
		t.Errorf("unexpected top-level values: %+v", cfg)
	}
	if cfg.Tickets.IncomingDir != "inbox" {
		t.Errorf("IncomingDir = %q, want inbox", cfg.Tickets.IncomingDir)
	}
	if !cfg.Engine.Explain || cfg.Engine.Gate.ForceYesAt != 0.9 {
		t.Errorf("unexpected engine values: %+v", cfg.Engine)
	}
	if len(cfg.Consult.Args) != 2 || cfg.Consult.Args[0] != "--print" {
		t.Errorf("Args = %v", cfg.Consult.Args)
	}
}

func TestLoadFromPath_ExplicitZeroThreshold(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `
engine:
  gate:
    silence_below: 0
    downgrade_below: 0.4
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	file, err := loadFromPath(configPath)
	if err != nil {
		t.Fatalf("loadFromPath() error = %v", err)
	}
	g := merge(Default(), file).Engine.Gate

	if g.SilenceBelow != 0 {
		t.Errorf("SilenceBelow = %v, want explicit 0", g.SilenceBelow)
	}
	if g.DowngradeBelow != 0.4 {
		t.Errorf("DowngradeBelow = %v, want 0.4", g.DowngradeBelow)
	}
	// Thresholds absent from the file keep their defaults.
	if g.ForceYesAt != DefaultForceYesAt || g.HedgeUpAt != DefaultHedgeUpAt {
		t.Errorf("unset thresholds changed: %+v", g)
	}
}

func TestLoadFromPath_NotExists(t *testing.T) {
	cfg, err := loadFromPath("/nonexistent/config.yaml")
	if cfg != nil {
		t.Errorf("loadFromPath for nonexistent file should return nil config")
	}
	if err == nil {
		t.Errorf("loadFromPath for nonexistent file should return error")
	}
}

func TestLoad_ProjectAndFlags(t *testing.T) {
	home := isolate(t)
	projectPath := filepath.Join(home, "project.yaml")
	if err := os.WriteFile(projectPath, []byte("output: yaml\nroot: /from/project\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CLEARFRAME_CONFIG", projectPath)

	cfg, err := Load(&Config{Root: "/from/flag"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Output != "yaml" {
		t.Errorf("Output = %q, want yaml from project", cfg.Output)
	}
	if cfg.Root != "/from/flag" {
		t.Errorf("Root = %q, want flag value", cfg.Root)
	}
}

func TestLoad_InvalidProjectConfig(t *testing.T) {
	home := isolate(t)
	projectPath := filepath.Join(home, "broken.yaml")
	if err := os.WriteFile(projectPath, []byte("output: [unterminated\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CLEARFRAME_CONFIG", projectPath)

	if _, err := Load(nil); err == nil {
		t.Fatal("expected error for unparsable project config")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"bad output", func(c *Config) { c.Output = "xml" }, ErrInvalidOutput},
		{"bad provider", func(c *Config) { c.Consult.Provider = "openai" }, ErrUnknownProvider},
		{"threshold range", func(c *Config) { c.Engine.Gate.ForceYesAt = 1.5 }, ErrThresholdRange},
		{"threshold order", func(c *Config) { c.Engine.Gate.SilenceBelow = 0.7 }, ErrThresholdOrder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPaths(t *testing.T) {
	cfg := Default()
	cfg.Root = "/repo"

	if got := cfg.IncomingPath(); got != filepath.Join("/repo", "tickets", "incoming") {
		t.Errorf("IncomingPath() = %q", got)
	}
	cfg.Tickets.RunsDir = "/abs/runs"
	if got := cfg.RunsPath(); got != "/abs/runs" {
		t.Errorf("RunsPath() with absolute dir = %q", got)
	}
}

func TestConsultTimeout(t *testing.T) {
	cfg := Default()
	if cfg.ConsultTimeout() != 30*time.Second {
		t.Errorf("default timeout = %v", cfg.ConsultTimeout())
	}
	cfg.Consult.Timeout = "nonsense"
	if cfg.ConsultTimeout() != 30*time.Second {
		t.Errorf("invalid timeout should fall back, got %v", cfg.ConsultTimeout())
	}
	cfg.Consult.Timeout = "2s"
	if cfg.ConsultTimeout() != 2*time.Second {
		t.Errorf("timeout = %v, want 2s", cfg.ConsultTimeout())
	}
}

func TestResolve(t *testing.T) {
	isolate(t)
	rc := Resolve("json", "/flag/root", true)

	if rc.Output.Value != "json" || rc.Output.Source != SourceFlag {
		t.Errorf("Output = (%v, %v), want (json, flag)", rc.Output.Value, rc.Output.Source)
	}
	if rc.Root.Value != "/flag/root" {
		t.Errorf("Root.Value = %v", rc.Root.Value)
	}
	if rc.Verbose.Value != true || rc.Verbose.Source != SourceFlag {
		t.Errorf("Verbose = (%v, %v)", rc.Verbose.Value, rc.Verbose.Source)
	}
}

func TestResolve_EnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("CLEARFRAME_RUNS_DIR", "/env/runs")
	t.Setenv("CLEARFRAME_CONSULT_PROVIDER", "command")

	rc := Resolve("", "", false)

	if rc.RunsDir.Value != "/env/runs" || rc.RunsDir.Source != SourceEnv {
		t.Errorf("RunsDir = (%v, %v)", rc.RunsDir.Value, rc.RunsDir.Source)
	}
	if rc.ConsultProvider.Value != "command" || rc.ConsultProvider.Source != SourceEnv {
		t.Errorf("ConsultProvider = (%v, %v)", rc.ConsultProvider.Value, rc.ConsultProvider.Source)
	}
	if rc.Output.Source != SourceDefault {
		t.Errorf("Output.Source = %v, want default", rc.Output.Source)
	}
}

func TestResolveStringField(t *testing.T) {
	tests := []struct {
		name       string
		home       string
		project    string
		env        string
		flag       string
		def        string
		wantValue  string
		wantSource Source
	}{
		{name: "default only", def: "table", wantValue: "table", wantSource: SourceDefault},
		{name: "home overrides default", home: "json", def: "table", wantValue: "json", wantSource: SourceHome},
		{name: "project overrides home", home: "json", project: "yaml", def: "table", wantValue: "yaml", wantSource: SourceProject},
		{name: "env overrides project", project: "yaml", env: "json", def: "table", wantValue: "json", wantSource: SourceEnv},
		{name: "flag overrides everything", home: "json", env: "yaml", flag: "table", def: "json", wantValue: "table", wantSource: SourceFlag},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveStringField(tt.home, tt.project, tt.env, tt.flag, tt.def)
			if got.Value != tt.wantValue {
				t.Errorf("resolveStringField() Value = %v, want %v", got.Value, tt.wantValue)
			}
			if got.Source != tt.wantSource {
				t.Errorf("resolveStringField() Source = %v, want %v", got.Source, tt.wantSource)
			}
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		envVal   string
		wantBool bool
		wantSet  bool
	}{
		{"true", true, true},
		{"1", true, true},
		{"false", false, true},
		{"0", false, true},
		{"", false, false},
		{"yes", false, false},
	}

	for _, tt := range tests {
		t.Setenv("TEST_BOOL_KEY", tt.envVal)
		gotBool, gotSet := getEnvBool("TEST_BOOL_KEY")
		if gotBool != tt.wantBool || gotSet != tt.wantSet {
			t.Errorf("getEnvBool(%q) = (%v, %v), want (%v, %v)", tt.envVal, gotBool, gotSet, tt.wantBool, tt.wantSet)
		}
	}
}
