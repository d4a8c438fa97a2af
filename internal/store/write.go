package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/idorch/internal/header"
)

// Save writes h as a binary record and as a JSON mirror entry.
// Returns the absolute path of the binary record, the line a module prints
// on stdout. Saving the same header twice rewrites the same files.
func (s *Store) Save(h header.Header) (string, error) {
	base := RecordBaseName(h)

	data, err := header.Encode(h)
	if err != nil {
		return "", fmt.Errorf("save header: %w", err)
	}
	recordPath := filepath.Join(s.BinaryPath(), base+RecordExt)
	if err := writeAtomic(recordPath, data); err != nil {
		return "", fmt.Errorf("save header: %w", err)
	}

	mirror, err := json.MarshalIndent(mirrorRecord{ID: h.ID(), Header: h}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("save header mirror: %w", err)
	}
	mirrorPath := filepath.Join(s.MirrorPath(), base+MirrorExt)
	if err := writeAtomic(mirrorPath, append(mirror, '\n')); err != nil {
		return "", fmt.Errorf("save header mirror: %w", err)
	}

	return recordPath, nil
}

// mirrorRecord is the JSON mirror layout.
type mirrorRecord struct {
	ID string `json:"id"`
	header.Header
}

// RecordBaseName returns the file name, without extension, used for h:
// header_<category>_<first 16 hex digits of the ID>.
// The ID component keeps concurrent writers from colliding.
func RecordBaseName(h header.Header) string {
	return fmt.Sprintf("%s_%s_%s", RecordPrefix, sanitize(h.Category), h.ID()[:16])
}

// sanitize keeps letters, digits, '-' and '.'; anything else becomes '-'.
func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "unnamed"
	}
	return b.String()
}

// writeAtomic writes data to a temporary file in the target directory and
// renames it over path.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
