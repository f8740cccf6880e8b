// Package sandbox executes plan steps inside a run-scoped workspace and
// records the outcome as a JSON artifact.
//
// Supported step forms:
//   - "write <relpath>: <content>" writes content verbatim
//   - "create <relpath>" writes a stub carrying StubMarker
//
// Any other description is a no-op that completes. Execution stops at the
// first failed step, and the artifact lists only the attempted steps.
package sandbox

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/clearframe/clearframe/internal/logging"
	"github.com/clearframe/clearframe/internal/storage"
	"github.com/clearframe/clearframe/internal/types"
)

const (
	// WorkspaceDir is the run subdirectory holding per-ticket workspaces.
	WorkspaceDir = "workspace"

	// StubMarker is the content of files made by create steps.
	StubMarker = "// clearframe: generated stub"

	noopOutput = "no-op"
)

// Executor runs steps for one ticket at a time.
type Executor struct {
	// Version is recorded in artifact meta.
	Version string

	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

// NewExecutor creates an executor stamping artifacts with version.
func NewExecutor(version string, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = logging.New("sandbox")
	}
	return &Executor{
		Version: version,
		now:     time.Now,
		newID:   uuid.NewString,
		logger:  logger,
	}
}

// Option configures a single Execute call.
type Option func(*execOptions)

type execOptions struct {
	failStep int
	analysis *types.Analysis
}

// WithFailStep injects a failure at the step with the given id.
// Ids below 1 disable injection.
func WithFailStep(id int) Option {
	return func(o *execOptions) { o.failStep = id }
}

// WithAnalysis embeds the signal analysis in the artifact.
func WithAnalysis(a *types.Analysis) Option {
	return func(o *execOptions) { o.analysis = a }
}

// WorkspacePath returns the workspace directory for ticketID in runDir.
func WorkspacePath(runDir, ticketID string) string {
	return filepath.Join(runDir, WorkspaceDir, Key(ticketID))
}

// Execute runs steps in order inside the ticket workspace and writes the
// artifact. Step failures are recorded, not returned; the error is only set
// when the workspace or the artifact cannot be written.
func (e *Executor) Execute(ticketID string, steps []types.Step, runDir string, opts ...Option) (types.ExecutionResult, error) {
	var o execOptions
	for _, opt := range opts {
		opt(&o)
	}

	ws := WorkspacePath(runDir, ticketID)
	if err := os.MkdirAll(ws, storage.DirPerm); err != nil {
		return types.ExecutionResult{}, fmt.Errorf("%w %s: %v", ErrWorkspace, ws, err)
	}

	run := make([]types.Step, len(steps))
	copy(run, steps)

	attempted, failed, simulated := 0, false, false
	for i := range run {
		s := &run[i]
		attempted++

		if o.failStep > 0 && s.ID == o.failStep {
			s.Status = types.StepFailed
			s.Output = fmt.Sprintf("simulated failure at step %d", s.ID)
			failed, simulated = true, true
			break
		}

		out, err := applyStep(ws, s.Description)
		if err != nil {
			s.Status = types.StepFailed
			s.Output = err.Error()
			failed = true
			e.logger.Debug("step failed", "ticket", ticketID, "step", s.ID, "error", err)
			break
		}
		s.Status = types.StepCompleted
		s.Output = out
	}

	status := StatusDryRun
	if failed {
		status = StatusDryRunFailed
	}
	artifact := Artifact{
		TicketID:      ticketID,
		Status:        status,
		WorkspacePath: ws,
		Steps:         run[:attempted],
		Analysis:      o.analysis,
		Meta: Meta{
			TimestampUTC:      e.now().UTC().Format(time.RFC3339Nano),
			Platform:          runtime.GOOS + "/" + runtime.GOARCH,
			SimulatedFailure:  simulated,
			ExecutionID:       e.newID(),
			GoVersion:         runtime.Version(),
			ClearframeVersion: e.Version,
		},
	}

	path := ArtifactPath(runDir, ticketID)
	if err := storage.WriteJSON(path, artifact); err != nil {
		return types.ExecutionResult{}, fmt.Errorf("write artifact for %s: %w", ticketID, err)
	}

	e.logger.Debug("executed", "ticket", ticketID, "status", status, "steps", attempted)
	return types.ExecutionResult{ArtifactPath: path, StepCount: attempted, Failed: failed}, nil
}

// applyStep performs one step description inside ws and returns its output.
func applyStep(ws, description string) (string, error) {
	d := strings.TrimLeft(description, " \t")

	switch {
	case strings.HasPrefix(d, "write "):
		rest := d[len("write "):]
		idx := strings.Index(rest, ":")
		if idx < 0 {
			return noopOutput, nil
		}
		rel := strings.TrimSpace(rest[:idx])
		content := strings.TrimPrefix(rest[idx+1:], " ")
		if err := writeFile(ws, rel, content); err != nil {
			return "", err
		}
		return fmt.Sprintf("wrote %d chars to %s", utf8.RuneCountInString(content), rel), nil

	case strings.HasPrefix(d, "create "):
		rel := strings.TrimSpace(d[len("create "):])
		if err := writeFile(ws, rel, StubMarker+"\n"); err != nil {
			return "", err
		}
		return "created " + rel, nil

	default:
		return noopOutput, nil
	}
}

// writeFile writes content to rel under ws, creating parent directories.
func writeFile(ws, rel, content string) error {
	if rel == "" || !filepath.IsLocal(rel) {
		return fmt.Errorf("%w: %q", ErrPathEscape, rel)
	}
	target := filepath.Join(ws, rel)
	if err := os.MkdirAll(filepath.Dir(target), storage.DirPerm); err != nil {
		return fmt.Errorf("create parent of %s: %w", rel, err)
	}
	if err := os.WriteFile(target, []byte(content), storage.FilePerm); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	return nil
}
