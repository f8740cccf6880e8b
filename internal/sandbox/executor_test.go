package sandbox

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/clearframe/clearframe/internal/logging"
	"github.com/clearframe/clearframe/internal/types"
)

func newTestExecutor() *Executor {
	e := NewExecutor("test", logging.Discard())
	e.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	e.newID = func() string { return "exec-1" }
	return e
}

func steps(descriptions ...string) []types.Step {
	out := make([]types.Step, len(descriptions))
	for i, d := range descriptions {
		out[i] = types.NewStep(i+1, d)
	}
	return out
}

func TestExecute_FailStepTwoOfThree(t *testing.T) {
	runDir := t.TempDir()
	e := newTestExecutor()

	res, err := e.Execute("T-1", steps("one", "two", "three"), runDir, WithFailStep(2))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.StepCount != 2 || !res.Failed {
		t.Errorf("result = %+v, want StepCount 2 and Failed", res)
	}

	a, err := ReadArtifact(res.ArtifactPath)
	if err != nil {
		t.Fatal(err)
	}
	if a.Status != StatusDryRunFailed || !a.Failed() {
		t.Errorf("Status = %q, want %q", a.Status, StatusDryRunFailed)
	}
	wantStatus := []types.StepStatus{types.StepCompleted, types.StepFailed}
	if len(a.Steps) != len(wantStatus) {
		t.Fatalf("artifact lists %d steps, want the %d attempted", len(a.Steps), len(wantStatus))
	}
	for i, s := range a.Steps {
		if s.Status != wantStatus[i] {
			t.Errorf("step %d status = %q, want %q", s.ID, s.Status, wantStatus[i])
		}
	}
	if a.Steps[1].Output != "simulated failure at step 2" {
		t.Errorf("step 2 output = %q", a.Steps[1].Output)
	}
	if !a.Meta.SimulatedFailure {
		t.Error("meta.simulated_failure should be true")
	}
}

func TestExecute_WriteAndCreate(t *testing.T) {
	runDir := t.TempDir()
	e := newTestExecutor()

	res, err := e.Execute("T-2", steps("write notes/a.txt: héllo: world", "create pkg/stub.go", "think about it"), runDir)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Failed || res.StepCount != 3 {
		t.Fatalf("result = %+v", res)
	}

	ws := WorkspacePath(runDir, "T-2")
	data, err := os.ReadFile(filepath.Join(ws, "notes", "a.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "héllo: world" {
		t.Errorf("written content = %q", data)
	}
	stub, err := os.ReadFile(filepath.Join(ws, "pkg", "stub.go"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(stub), StubMarker) {
		t.Errorf("stub missing marker: %q", stub)
	}

	a, err := ReadArtifact(res.ArtifactPath)
	if err != nil {
		t.Fatal(err)
	}
	wantOutputs := []string{"wrote 12 chars to notes/a.txt", "created pkg/stub.go", "no-op"}
	for i, s := range a.Steps {
		if s.Status != types.StepCompleted || s.Output != wantOutputs[i] {
			t.Errorf("step %d = (%q, %q), want (completed, %q)", s.ID, s.Status, s.Output, wantOutputs[i])
		}
	}

	wantMeta := Meta{
		TimestampUTC:      "2026-01-02T03:04:05Z",
		Platform:          a.Meta.Platform,
		ExecutionID:       "exec-1",
		GoVersion:         a.Meta.GoVersion,
		ClearframeVersion: "test",
	}
	if diff := cmp.Diff(wantMeta, a.Meta); diff != "" {
		t.Errorf("meta mismatch (-want +got):\n%s", diff)
	}
	if a.Status != StatusDryRun || a.WorkspacePath != ws || a.TicketID != "T-2" {
		t.Errorf("artifact header = %q %q %q", a.Status, a.WorkspacePath, a.TicketID)
	}
}

func TestExecute_PathEscapeStops(t *testing.T) {
	runDir := t.TempDir()
	e := newTestExecutor()

	res, err := e.Execute("T-3", steps("write ../../escape.txt: x", "write ok.txt: y"), runDir)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !res.Failed || res.StepCount != 1 {
		t.Errorf("result = %+v, want failure at step 1", res)
	}
	if _, err := os.Stat(filepath.Join(runDir, "escape.txt")); !os.IsNotExist(err) {
		t.Error("file written outside the workspace")
	}

	a, err := ReadArtifact(res.ArtifactPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(a.Steps[0].Output, ErrPathEscape.Error()) {
		t.Errorf("step output = %q, want path escape error", a.Steps[0].Output)
	}
	if a.Meta.SimulatedFailure {
		t.Error("a real failure is not simulated")
	}
	if len(a.Steps) != 1 {
		t.Errorf("artifact lists %d steps, want only the failed one", len(a.Steps))
	}
}

func TestExecute_DoesNotMutateInput(t *testing.T) {
	in := steps("a", "b")
	if _, err := newTestExecutor().Execute("T-4", in, t.TempDir()); err != nil {
		t.Fatal(err)
	}
	for _, s := range in {
		if s.Status != types.StepPending || s.Output != "" {
			t.Errorf("input step mutated: %+v", s)
		}
	}
}

func TestExecute_EmbedsAnalysis(t *testing.T) {
	analysis := &types.Analysis{Classification: types.ClassYes, Signal: 0.9, Intervention: types.InterventionYes}
	res, err := newTestExecutor().Execute("T-5", steps("a"), t.TempDir(), WithAnalysis(analysis))
	if err != nil {
		t.Fatal(err)
	}
	a, err := ReadArtifact(res.ArtifactPath)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(analysis, a.Analysis); diff != "" {
		t.Errorf("analysis mismatch (-want +got):\n%s", diff)
	}
}

func TestExecute_WorkspaceFailureIsFatal(t *testing.T) {
	dir := t.TempDir()
	runDir := filepath.Join(dir, "not-a-dir")
	if err := os.WriteFile(runDir, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := newTestExecutor().Execute("T-6", steps("a"), runDir)
	if !errors.Is(err, ErrWorkspace) {
		t.Errorf("Execute() error = %v, want ErrWorkspace", err)
	}
}

func TestListArtifacts(t *testing.T) {
	runDir := t.TempDir()
	e := newTestExecutor()
	for _, id := range []string{"b", "a"} {
		if _, err := e.Execute(id, steps("x"), runDir); err != nil {
			t.Fatal(err)
		}
	}

	got, err := ListArtifacts(runDir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(runDir, "a"+ArtifactSuffix), filepath.Join(runDir, "b"+ArtifactSuffix)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ListArtifacts() mismatch (-want +got):\n%s", diff)
	}

	missing, err := ListArtifacts(filepath.Join(runDir, "nope"))
	if err != nil || len(missing) != 0 {
		t.Errorf("missing dir = (%v, %v), want empty", missing, err)
	}
}
