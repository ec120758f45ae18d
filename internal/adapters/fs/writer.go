package fs

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ArtifactWriter = (*Writer)(nil)

const artifactMode os.FileMode = 0o644

// Writer writes generated artifacts, leaving files untouched when their content
// is already current so that file watchers and browsers do not see spurious
// changes.
type Writer struct {
	mu     sync.Mutex
	hashes map[string]uint64
}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{hashes: make(map[string]uint64)}
}

// Write stores data at path. It reports false when the file already held exactly data.
func (w *Writer) Write(path string, data []byte) (bool, error) {
	sum := xxhash.Sum64(data)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.current(path, sum) {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return false, writeError(err, path)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return false, writeError(err, path)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // Removed already after a successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return false, writeError(err, path)
	}
	// CreateTemp uses 0600; artifacts are served and read by other tools.
	if err := tmp.Chmod(artifactMode); err != nil {
		_ = tmp.Close()
		return false, writeError(err, path)
	}
	if err := tmp.Close(); err != nil {
		return false, writeError(err, path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return false, writeError(err, path)
	}

	w.hashes[path] = sum
	return true, nil
}

// current reports whether path already holds content hashing to sum.
func (w *Writer) current(path string, sum uint64) bool {
	if cached, ok := w.hashes[path]; ok && cached != sum {
		return false
	}
	existing, err := os.ReadFile(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		delete(w.hashes, path)
		return false
	}
	if xxhash.Sum64(existing) != sum {
		return false
	}
	w.hashes[path] = sum
	return true
}

func writeError(err error, path string) error {
	return zerr.With(errors.Join(domain.ErrArtifactWriteFailed, err), "path", path)
}
