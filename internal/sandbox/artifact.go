package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/clearframe/clearframe/internal/storage"
	"github.com/clearframe/clearframe/internal/types"
)

// Artifact status values.
const (
	StatusDryRun       = "DRY_RUN"
	StatusDryRunFailed = "DRY_RUN_FAILED"
)

// ArtifactSuffix is appended to the ticket name to form the artifact filename.
const ArtifactSuffix = ".execution.json"

// Artifact is the durable record of one ticket execution.
type Artifact struct {
	TicketID      string          `json:"ticket_id"`
	Status        string          `json:"status"`
	WorkspacePath string          `json:"workspace_path"`
	Steps         []types.Step    `json:"steps"`
	Analysis      *types.Analysis `json:"analysis,omitempty"`
	Meta          Meta            `json:"meta"`
}

// Meta describes the environment an artifact was produced in.
type Meta struct {
	TimestampUTC      string `json:"timestamp_utc"`
	Platform          string `json:"platform"`
	SimulatedFailure  bool   `json:"simulated_failure"`
	ExecutionID       string `json:"execution_id,omitempty"`
	GoVersion         string `json:"go_version,omitempty"`
	ClearframeVersion string `json:"clearframe_version,omitempty"`
}

// Failed reports whether the execution stopped at a failed step.
func (a *Artifact) Failed() bool {
	return a.Status == StatusDryRunFailed
}

// ArtifactPath returns where the artifact for ticketID lives in runDir.
func ArtifactPath(runDir, ticketID string) string {
	return filepath.Join(runDir, Key(ticketID)+ArtifactSuffix)
}

// Key is the file-system name shared by a ticket's artifact and workspace.
// Distinct ids can share a key ("x y" and "x-y"); within one run each key
// may be executed only once.
func Key(ticketID string) string {
	return storage.SafeName(ticketID)
}

// ReadArtifact loads an artifact file.
func ReadArtifact(path string) (*Artifact, error) {
	var a Artifact
	if err := storage.ReadJSON(path, &a); err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", path, err)
	}
	return &a, nil
}

// ListArtifacts returns the artifact files in runDir sorted by name.
// A missing directory has no artifacts.
func ListArtifacts(runDir string) ([]string, error) {
	entries, err := os.ReadDir(runDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), ArtifactSuffix) {
			paths = append(paths, filepath.Join(runDir, e.Name()))
		}
	}
	return paths, nil
}
