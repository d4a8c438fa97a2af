package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// Workspace layout names.
const (
	IdentifiedDir = "identified"
	BinaryDir     = "msgpack"
	MirrorDir     = "json"

	// RecordPrefix starts every header record file name.
	RecordPrefix = "header"
	// RecordExt is the binary record extension, matched case-insensitively.
	RecordExt = ".msgpack"
	// MirrorExt is the extension of the JSON mirror files.
	MirrorExt = ".json"
)

// Store is the header store of one run workspace.
type Store struct {
	runPath string
}

// Open prepares the workspace at runPath, creating the binary record and
// mirror directories if needed. It is idempotent.
func Open(runPath string) (*Store, error) {
	abs, err := filepath.Abs(runPath)
	if err != nil {
		return nil, fmt.Errorf("resolve run path: %w", err)
	}
	s := &Store{runPath: abs}
	for _, dir := range []string{s.BinaryPath(), s.MirrorPath()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return s, nil
}

// RunPath returns the absolute run path.
func (s *Store) RunPath() string {
	return s.runPath
}

// IdentifiedPath returns <run>/identified.
func (s *Store) IdentifiedPath() string {
	return filepath.Join(s.runPath, IdentifiedDir)
}

// BinaryPath returns the directory holding binary header records.
func (s *Store) BinaryPath() string {
	return filepath.Join(s.runPath, IdentifiedDir, BinaryDir)
}

// MirrorPath returns the directory holding the JSON mirror.
func (s *Store) MirrorPath() string {
	return filepath.Join(s.runPath, IdentifiedDir, MirrorDir)
}
