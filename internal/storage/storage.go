// Package storage persists uploaded documents and generated artifacts as
// opaque byte blobs.
package storage

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/dealdesk/dealdesk/internal/model"
)

// FileStorage stores and resolves file blobs by relative path.
type FileStorage interface {
	Store(data []byte, path string) error
	// Resolve returns the absolute on-disk location of a stored path.
	Resolve(path string) (string, error)
}

// Local is a FileStorage rooted at a directory on local disk.
type Local struct {
	root string
}

// NewLocal creates a local file store rooted at dir.
func NewLocal(dir string) *Local {
	return &Local{root: dir}
}

func (l *Local) abs(path string) (string, error) {
	root := filepath.Clean(l.root)
	full := filepath.Join(root, path)
	if !strings.HasPrefix(full, root+string(os.PathSeparator)) {
		return "", model.Validationf("storage: path %q escapes the storage root", path)
	}
	return full, nil
}

// Store writes data to path under the storage root, creating parent
// directories as needed.
func (l *Local) Store(data []byte, path string) error {
	full, err := l.abs(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return eris.Wrapf(err, "storage: create dir for %s", path)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return eris.Wrapf(err, "storage: write %s", path)
	}
	return nil
}

// Resolve returns the absolute location of path, or ErrNotFound if nothing
// is stored there.
func (l *Local) Resolve(path string) (string, error) {
	full, err := l.abs(path)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(full); err != nil {
		if os.IsNotExist(err) {
			return "", model.NotFoundf("storage: %s", path)
		}
		return "", eris.Wrapf(err, "storage: stat %s", path)
	}
	return full, nil
}
