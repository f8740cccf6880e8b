// Package storage provides the durable file primitives the pipeline relies on:
// atomic writes (temp file, fsync, rename), JSON documents, and file names
// derived from ticket ids.
package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DirPerm is used for every directory the pipeline creates.
	DirPerm = 0o755

	// FilePerm is used for artifacts, index and workspace files.
	FilePerm = 0o644

	// NameMaxLength bounds names produced by SafeName.
	NameMaxLength = 80
)

// AtomicWrite writes to a temp file in the target directory, syncs it, and
// renames it over path. Readers never observe a partially written file.
func AtomicWrite(path string, writeFunc func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DirPerm); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".tmp-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath) //nolint:errcheck // cleanup in error path
		}
	}()

	if err := writeFunc(tmpFile); err != nil {
		_ = tmpFile.Close() //nolint:errcheck // cleanup in error path
		return fmt.Errorf("write content: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close() //nolint:errcheck // cleanup in error path
		return fmt.Errorf("sync file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Chmod(tmpPath, FilePerm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename to final: %w", err)
	}

	success = true
	return SyncDir(dir)
}

// WriteJSON atomically writes v as indented JSON followed by a newline.
func WriteJSON(path string, v any) error {
	return AtomicWrite(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

// ReadJSON decodes the JSON document at path into v.
func ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return fmt.Errorf("%s: %w", path, ErrEmptyFile)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// SyncDir fsyncs a directory so a preceding rename is durable.
// Platforms that cannot open directories for sync are tolerated.
func SyncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return nil
	}
	defer func() {
		_ = d.Close() //nolint:errcheck // read-only handle
	}()
	if err := d.Sync(); err != nil && !isSyncUnsupported(err) {
		return fmt.Errorf("sync directory %s: %w", dir, err)
	}
	return nil
}

func isSyncUnsupported(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "invalid argument") || strings.Contains(msg, "not supported")
}

// SafeName turns an arbitrary id into a single path component. Letters,
// digits, '_' and '.' are kept; every other run of runes becomes one '-'.
func SafeName(id string) string {
	var b strings.Builder
	lastHyphen := false
	for _, r := range strings.TrimSpace(id) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '.':
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteRune('-')
			lastHyphen = true
		}
	}
	s := strings.Trim(b.String(), "-.")
	if len(s) > NameMaxLength {
		s = s[:NameMaxLength]
	}
	if s == "" {
		return "ticket"
	}
	return s
}
