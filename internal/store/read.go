package store

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/idorch/internal/header"
)

// ReadRecord reads and decodes the binary header record at path.
func ReadRecord(path string) (header.Header, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return header.Header{}, fmt.Errorf("read header record: %w", err)
	}
	h, err := header.Decode(data)
	if err != nil {
		return header.Header{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return h, nil
}

// IsRecordName reports whether name looks like a binary header record:
// it starts with RecordPrefix and ends with RecordExt in any letter case.
func IsRecordName(name string) bool {
	return strings.HasPrefix(name, RecordPrefix) && strings.EqualFold(filepath.Ext(name), RecordExt)
}

// Recover loads every readable header record of the workspace.
// A missing or unreadable directory yields an empty set.
func (s *Store) Recover() *header.Set {
	return RecoverDir(s.BinaryPath())
}

// RecoverDir loads every readable header record found directly in dir.
func RecoverDir(dir string) *header.Set {
	set := header.NewSet()

	entries, err := os.ReadDir(dir)
	if err != nil {
		slog.Debug("header directory not readable", "dir", dir, "error", err)
		return set
	}

	for _, entry := range entries {
		if !IsRecordName(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		// Stat follows symlinks, so linked records count.
		if info, err := os.Stat(path); err != nil || !info.Mode().IsRegular() {
			continue
		}
		h, err := ReadRecord(path)
		if err != nil {
			slog.Debug("skipping header record", "path", path, "error", err)
			continue
		}
		set.Add(h)
	}

	slog.Debug("recovered headers", "dir", dir, "count", set.Len())
	return set
}
