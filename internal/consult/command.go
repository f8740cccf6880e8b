package consult

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/clearframe/clearframe/internal/types"
)

// DefaultTimeout bounds a command consultation when Timeout is unset.
const DefaultTimeout = 30 * time.Second

// maxOutput caps how much command output is kept in a rationale.
const maxOutput = 2000

// Command consults an external CLI. The rendered prompt is written to the
// command's stdin; stdout is parsed as a JSON reply or used as raw text.
type Command struct {
	Name    string
	Args    []string
	Timeout time.Duration
}

// reply is the JSON shape requested by Prompt.
type reply struct {
	Classification string `json:"classification"`
	Reasoning      string `json:"reasoning"`
	Counterfactual string `json:"counterfactual"`
}

// Consult implements Consultant.
func (c *Command) Consult(ctx context.Context, text, category string) types.Suggestion {
	if strings.TrimSpace(c.Name) == "" {
		return failed(errors.New("no consult command configured"))
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Stdin = strings.NewReader(Prompt(text, category))
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Grandchildren may hold the output pipes open after the kill.
	cmd.WaitDelay = time.Second

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return failed(fmt.Errorf("%s timed out after %s", c.Name, timeout))
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return failed(fmt.Errorf("%s: %w: %s", c.Name, err, truncate(msg)))
		}
		return failed(fmt.Errorf("%s: %w", c.Name, err))
	}

	return parseReply(stdout.String())
}

// parseReply reads a JSON reply, tolerating surrounding prose or code fences.
// Anything else becomes the rationale verbatim.
func parseReply(out string) types.Suggestion {
	out = strings.TrimSpace(out)
	if out == "" {
		return failed(errors.New("empty reply"))
	}

	if start, end := strings.Index(out, "{"), strings.LastIndex(out, "}"); start >= 0 && end > start {
		var r reply
		if err := json.Unmarshal([]byte(out[start:end+1]), &r); err == nil && r.Reasoning != "" {
			return types.Suggestion{
				Rationale:      strings.TrimSpace(r.Reasoning),
				Counterfactual: strings.TrimSpace(r.Counterfactual),
			}
		}
	}
	return types.Suggestion{Rationale: truncate(out)}
}

// truncate caps s at maxOutput bytes without splitting a rune.
func truncate(s string) string {
	if len(s) <= maxOutput {
		return s
	}
	cut := maxOutput
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
