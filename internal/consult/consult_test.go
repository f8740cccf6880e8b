package consult

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"

	"github.com/clearframe/clearframe/internal/types"
)

func TestNew(t *testing.T) {
	if New(Settings{Provider: ProviderNone}) != nil {
		t.Error("none provider should disable consultation")
	}
	if _, ok := New(Settings{}).(Mock); !ok {
		t.Error("empty provider should default to Mock")
	}
	cmd, ok := New(Settings{Provider: ProviderCommand, Command: "claude", Args: []string{"-p"}, Timeout: time.Second}).(*Command)
	if !ok {
		t.Fatal("command provider should build *Command")
	}
	if cmd.Name != "claude" || cmd.Timeout != time.Second {
		t.Errorf("unexpected command: %+v", cmd)
	}
}

func TestMock(t *testing.T) {
	got := Mock{}.Consult(context.Background(), "anything", "SUNK_COST")
	want := types.Suggestion{Rationale: MockRationale}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Mock.Consult() mismatch (-want +got):\n%s", diff)
	}
}

func TestPrompt(t *testing.T) {
	p := Prompt("I already spent a year on this", "")
	if !strings.HasSuffix(p, "Input:\nI already spent a year on this\n") {
		t.Errorf("prompt should end with the input text, got tail %q", p[len(p)-60:])
	}
	if strings.Contains(p, "{category}") || strings.Contains(p, "hint") {
		t.Error("empty category should leave no placeholder or hint")
	}

	withHint := Prompt("x", "SUNK_COST")
	if !strings.Contains(withHint, "Ticket bias category hint: SUNK_COST") {
		t.Error("category hint missing")
	}

	// Placeholders inside the input are not expanded.
	if got := Prompt("literal {category}", "ANCHORING"); !strings.Contains(got, "literal {category}") {
		t.Error("input text was rewritten")
	}
}

func TestParseReply(t *testing.T) {
	tests := []struct {
		name string
		out  string
		want types.Suggestion
	}{
		{
			name: "json",
			out:  `{"classification":"YES","reasoning":"Past cost drives it.","counterfactual":"What if you started today?"}`,
			want: types.Suggestion{Rationale: "Past cost drives it.", Counterfactual: "What if you started today?"},
		},
		{
			name: "fenced json",
			out:  "```json\n{\"classification\":\"NO\",\"reasoning\":\"Neutral.\"}\n```",
			want: types.Suggestion{Rationale: "Neutral."},
		},
		{
			name: "raw text",
			out:  "  Looks like sunk cost.  ",
			want: types.Suggestion{Rationale: "Looks like sunk cost."},
		},
		{
			name: "empty",
			out:  "   ",
			want: types.Suggestion{Rationale: ErrorPrefix + "empty reply", Failed: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, parseReply(tt.out)); diff != "" {
				t.Errorf("parseReply() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTruncate_KeepsRunesWhole(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"ascii", strings.Repeat("a", maxOutput+10)},
		{"two-byte runes off boundary", "a" + strings.Repeat("é", maxOutput)},
		{"four-byte runes", strings.Repeat("😀", maxOutput)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in)
			if !utf8.ValidString(got) {
				t.Fatalf("truncate produced invalid UTF-8 (len %d)", len(got))
			}
			if !strings.HasSuffix(got, "...") || len(got) > maxOutput+len("...") {
				t.Errorf("len = %d, want at most %d with ellipsis", len(got), maxOutput+3)
			}
			if !strings.HasPrefix(tt.in, strings.TrimSuffix(got, "...")) {
				t.Error("truncated text is not a prefix of the input")
			}
		})
	}
	if got := truncate("short"); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
}

func TestCommand_Consult(t *testing.T) {
	c := &Command{
		Name: "sh",
		Args: []string{"-c", `cat >/dev/null; echo '{"classification":"POSSIBLY","reasoning":"ambiguous"}'`},
	}
	got := c.Consult(context.Background(), "text", "")
	if got.Failed || got.Rationale != "ambiguous" {
		t.Errorf("Consult() = %+v", got)
	}
}

func TestCommand_ReadsPromptFromStdin(t *testing.T) {
	c := &Command{Name: "sh", Args: []string{"-c", "grep -c 'needle in the input'"}}
	got := c.Consult(context.Background(), "needle in the input", "")
	if got.Failed || got.Rationale != "1" {
		t.Errorf("Consult() = %+v, want rationale 1", got)
	}
}

func TestCommand_FailuresAreTagged(t *testing.T) {
	tests := []struct {
		name string
		cmd  *Command
		want string
	}{
		{"no command", &Command{}, "no consult command configured"},
		{"missing binary", &Command{Name: "clearframe-no-such-binary"}, "clearframe-no-such-binary"},
		{"non-zero exit", &Command{Name: "sh", Args: []string{"-c", "echo boom >&2; exit 3"}}, "boom"},
		{"timeout", &Command{Name: "sh", Args: []string{"-c", "sleep 5"}, Timeout: 50 * time.Millisecond}, "timed out"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cmd.Consult(context.Background(), "text", "")
			if !got.Failed {
				t.Fatalf("expected failed suggestion, got %+v", got)
			}
			if !strings.HasPrefix(got.Rationale, ErrorPrefix) || !strings.Contains(got.Rationale, tt.want) {
				t.Errorf("Rationale = %q, want prefix %q containing %q", got.Rationale, ErrorPrefix, tt.want)
			}
		})
	}
}
