// Package ledger records loop invocations. Each invocation gets a run
// directory under the runs root, and index.json lists every run in append
// order. The index has a single writer; concurrent invocations are not
// supported.
package ledger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/clearframe/clearframe/internal/storage"
	"github.com/clearframe/clearframe/internal/types"
)

const (
	// IndexFile lists every run in the runs root.
	IndexFile = "index.json"

	// RunLogFile summarizes one run inside its directory.
	RunLogFile = "run_log.json"

	// RunIDLayout formats run ids as UTC timestamps.
	RunIDLayout = "20060102T150405Z"

	// maxRunSuffix bounds the disambiguation of same-second runs.
	maxRunSuffix = 99
)

// Ledger manages run directories and the run index.
type Ledger struct {
	// RunsDir is the runs root.
	RunsDir string
}

// New creates a ledger rooted at runsDir.
func New(runsDir string) *Ledger {
	return &Ledger{RunsDir: runsDir}
}

// NewRunID formats t as a run id.
func NewRunID(t time.Time) string {
	return t.UTC().Format(RunIDLayout)
}

// CreateRun makes a fresh run directory for now. A second run in the same
// second gets a "-N" suffix, which keeps lexical order chronological.
func (l *Ledger) CreateRun(now time.Time) (runID, dir string, err error) {
	if err := os.MkdirAll(l.RunsDir, storage.DirPerm); err != nil {
		return "", "", fmt.Errorf("create runs dir %s: %w", l.RunsDir, err)
	}

	base := NewRunID(now)
	for i := 0; i <= maxRunSuffix; i++ {
		runID = base
		if i > 0 {
			runID = fmt.Sprintf("%s-%d", base, i)
		}
		dir = filepath.Join(l.RunsDir, runID)
		err = os.Mkdir(dir, storage.DirPerm)
		if err == nil {
			return runID, dir, nil
		}
		if !os.IsExist(err) {
			return "", "", fmt.Errorf("create run dir %s: %w", dir, err)
		}
	}
	return "", "", fmt.Errorf("%w: %s", ErrRunExists, base)
}

// IndexPath returns the location of index.json.
func (l *Ledger) IndexPath() string {
	return filepath.Join(l.RunsDir, IndexFile)
}

// Records loads the run index. A missing or empty index has no records.
func (l *Ledger) Records() ([]types.RunRecord, error) {
	var records []types.RunRecord
	err := storage.ReadJSON(l.IndexPath(), &records)
	switch {
	case err == nil:
		return records, nil
	case os.IsNotExist(err), errors.Is(err, storage.ErrEmptyFile):
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrCorruptIndex, err)
	}
}

// Append adds rec to the index with an atomic rewrite.
func (l *Ledger) Append(rec types.RunRecord) error {
	records, err := l.Records()
	if err != nil {
		return err
	}
	records = append(records, rec)
	if err := storage.WriteJSON(l.IndexPath(), records); err != nil {
		return fmt.Errorf("write run index: %w", err)
	}
	return nil
}

// RunLog is the per-run summary written to run_log.json.
type RunLog struct {
	RunID          string   `json:"run_id"`
	TimestampUTC   string   `json:"timestamp_utc"`
	Processed      int      `json:"processed"`
	Artifacts      []string `json:"artifacts"`
	FailedTickets  []string `json:"failed_tickets"`
	SkippedTickets []string `json:"skipped_tickets"`
}

// WriteRunLog writes log into runDir and returns its path.
func WriteRunLog(runDir string, log RunLog) (string, error) {
	if log.Artifacts == nil {
		log.Artifacts = []string{}
	}
	if log.FailedTickets == nil {
		log.FailedTickets = []string{}
	}
	if log.SkippedTickets == nil {
		log.SkippedTickets = []string{}
	}
	path := filepath.Join(runDir, RunLogFile)
	if err := storage.WriteJSON(path, log); err != nil {
		return "", fmt.Errorf("write run log: %w", err)
	}
	return path, nil
}

// ReadRunLog loads run_log.json from runDir.
func ReadRunLog(runDir string) (*RunLog, error) {
	var log RunLog
	if err := storage.ReadJSON(filepath.Join(runDir, RunLogFile), &log); err != nil {
		return nil, err
	}
	return &log, nil
}
