package ledger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/clearframe/clearframe/internal/sandbox"
	"github.com/clearframe/clearframe/internal/types"
)

// NoRunsMessage is rendered when nothing has been recorded yet.
const NoRunsMessage = "No runs recorded."

// TicketReplay is the replayed view of one artifact.
type TicketReplay struct {
	TicketID     string       `json:"ticket_id" yaml:"ticket_id"`
	Status       string       `json:"status" yaml:"status"`
	ArtifactPath string       `json:"artifact_path" yaml:"artifact_path"`
	Steps        []types.Step `json:"steps" yaml:"steps"`
}

// Replay is the reconstructed most recent run.
type Replay struct {
	// Empty is set when no run with artifacts exists.
	Empty bool `json:"empty" yaml:"empty"`

	// Run identifies the replayed run.
	Run types.RunRecord `json:"run" yaml:"run"`

	// FromIndex is false when the run was found by scanning directories.
	FromIndex bool `json:"from_index" yaml:"from_index"`

	Tickets []TicketReplay `json:"tickets" yaml:"tickets"`
}

// Replay reconstructs the most recent run from the index and artifacts.
// It never writes.
func (l *Ledger) Replay() (*Replay, error) {
	records, err := l.Records()
	if err != nil {
		return nil, err
	}

	if n := len(records); n > 0 {
		last := records[n-1]
		dir := l.runDir(last)
		artifacts, err := sandbox.ListArtifacts(dir)
		if err != nil {
			return nil, fmt.Errorf("list artifacts in %s: %w", dir, err)
		}
		if len(artifacts) > 0 {
			last.Path = dir
			return buildReplay(last, true, artifacts)
		}
	}

	return l.scanLatest()
}

// runDir resolves the directory of rec, falling back to RunsDir/RunID when
// the recorded path no longer exists.
func (l *Ledger) runDir(rec types.RunRecord) string {
	if rec.Path != "" {
		if info, err := os.Stat(rec.Path); err == nil && info.IsDir() {
			return rec.Path
		}
	}
	return filepath.Join(l.RunsDir, rec.RunID)
}

// scanLatest walks run directories newest first and replays the first one
// holding an artifact.
func (l *Ledger) scanLatest() (*Replay, error) {
	entries, err := os.ReadDir(l.RunsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return &Replay{Empty: true}, nil
		}
		return nil, fmt.Errorf("read runs dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	for _, name := range names {
		dir := filepath.Join(l.RunsDir, name)
		artifacts, err := sandbox.ListArtifacts(dir)
		if err != nil {
			return nil, fmt.Errorf("list artifacts in %s: %w", dir, err)
		}
		if len(artifacts) == 0 {
			continue
		}
		rec := types.RunRecord{RunID: name, Path: dir, Processed: len(artifacts)}
		return buildReplay(rec, false, artifacts)
	}
	return &Replay{Empty: true}, nil
}

func buildReplay(rec types.RunRecord, fromIndex bool, artifacts []string) (*Replay, error) {
	r := &Replay{Run: rec, FromIndex: fromIndex}
	for _, path := range artifacts {
		a, err := sandbox.ReadArtifact(path)
		if err != nil {
			return nil, err
		}
		r.Tickets = append(r.Tickets, TicketReplay{
			TicketID:     a.TicketID,
			Status:       a.Status,
			ArtifactPath: path,
			Steps:        a.Steps,
		})
	}
	return r, nil
}

// Render writes the plain-text replay.
func (r *Replay) Render(w io.Writer) error {
	if r.Empty {
		_, err := fmt.Fprintln(w, NoRunsMessage)
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Run %s\n", r.Run.RunID)
	fmt.Fprintf(&b, "path: %s\n", r.Run.Path)
	fmt.Fprintf(&b, "processed: %d\n", r.Run.Processed)
	for _, t := range r.Tickets {
		fmt.Fprintf(&b, "\n%s  %s\n", t.TicketID, t.Status)
		for _, s := range t.Steps {
			fmt.Fprintf(&b, "  %d. [%s] %s\n", s.ID, s.Status, oneLine(s.Description))
			if s.Output != "" {
				fmt.Fprintf(&b, "     -> %s\n", oneLine(s.Output))
			}
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// oneLine collapses newlines so multi-line step text stays on one row.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
