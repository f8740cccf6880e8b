// Package ticket manages the pending-ticket inbox.
// Tickets flow through: pending → processed (or failed), and the archived file
// stays in the inbox with the ArchiveSuffix appended.
package ticket

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/clearframe/clearframe/internal/types"
)

const (
	// ArchiveSuffix marks a ticket file that has already been processed.
	ArchiveSuffix = ".done"

	// DefaultTitle is used when a ticket file carries no title field.
	DefaultTitle = "Untitled Ticket"
)

// Store reads and archives ticket files in one inbox directory.
type Store struct {
	// InboxDir holds pending and archived ticket files.
	InboxDir string
}

// NewStore creates a store over inboxDir.
func NewStore(inboxDir string) *Store {
	return &Store{InboxDir: inboxDir}
}

// ListPending returns the paths of pending ticket files sorted by filename.
// Hidden files, directories and archived tickets are skipped. A missing inbox
// yields an empty list.
func (s *Store) ListPending() ([]string, error) {
	entries, err := os.ReadDir(s.InboxDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read inbox %s: %w", s.InboxDir, err)
	}

	// os.ReadDir returns entries sorted by filename.
	var paths []string
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || strings.HasPrefix(name, ".") || strings.HasSuffix(name, ArchiveSuffix) {
			continue
		}
		paths = append(paths, filepath.Join(s.InboxDir, name))
	}
	return paths, nil
}

// Load reads, validates and classifies one ticket file.
func (s *Store) Load(path string) (*types.Ticket, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ticket %s: %w", path, err)
	}

	fields := decodeFields(path, data)
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	t := &types.Ticket{SourcePath: path, Status: types.TicketPending}
	var ok bool
	if t.ID, ok = field(fields, "id"); !ok {
		t.ID = strings.TrimSpace(stem)
	}
	if t.Title, ok = field(fields, "title"); !ok {
		t.Title = DefaultTitle
	}
	if fields == nil {
		t.Body = strings.TrimSpace(string(data))
	} else {
		t.Body, _ = field(fields, "body")
	}
	if status, ok := field(fields, "status"); ok {
		t.Status = types.ParseTicketStatus(status)
	}

	for _, check := range []struct{ name, value string }{
		{"id", t.ID}, {"title", t.Title}, {"body", t.Body},
	} {
		if check.value == "" {
			return nil, fmt.Errorf("%w: %s: empty %s", types.ErrMalformedTicket, path, check.name)
		}
	}

	t.BiasType, t.SignalStrength = ClassifyBias(t.Body, t.ID)
	return t, nil
}

// decodeFields decodes a structured ticket file into a field map.
// It returns nil when the file should be treated as raw body text.
func decodeFields(path string, data []byte) map[string]any {
	var fields map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &fields); err != nil {
			return nil
		}
	default:
		return nil
	}
	return fields
}

// field returns the trimmed string form of a ticket field and whether it was present.
func field(fields map[string]any, key string) (string, bool) {
	v, ok := fields[key]
	if !ok || v == nil {
		return "", false
	}
	if s, isStr := v.(string); isStr {
		return strings.TrimSpace(s), true
	}
	return strings.TrimSpace(fmt.Sprint(v)), true
}

// Archive renames the ticket file with ArchiveSuffix and records the final
// status on t. Archiving an already archived ticket is a no-op.
func (s *Store) Archive(t *types.Ticket, failed bool) error {
	if t.SourcePath == "" {
		return ErrNotArchivable
	}

	status := types.TicketProcessed
	if failed {
		status = types.TicketFailed
	}

	if strings.HasSuffix(t.SourcePath, ArchiveSuffix) {
		t.Status = status
		return nil
	}

	dest := t.SourcePath + ArchiveSuffix
	if err := os.Rename(t.SourcePath, dest); err != nil {
		if _, statErr := os.Stat(dest); os.IsNotExist(err) && statErr == nil {
			// Already archived by an earlier call.
			t.SourcePath = dest
			t.Status = status
			return nil
		}
		return fmt.Errorf("archive ticket %s: %w", t.ID, err)
	}

	t.SourcePath = dest
	t.Status = status
	return nil
}
