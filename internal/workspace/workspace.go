// Package workspace provides an arena-like scoped temp directory for the
// rasterized pages and OCR tiles of a single document. Closing it removes
// the whole tree regardless of which exit path the caller took.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Workspace owns the temporary files of one document's pipeline run.
type Workspace struct {
	dir string
}

// New creates a fresh, uniquely-named scoped directory under baseDir (or the
// OS default temp dir if baseDir is empty).
func New(baseDir string) (*Workspace, error) {
	prefix := "intakex-" + uuid.NewString()
	dir, err := os.MkdirTemp(baseDir, prefix+"-")
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &Workspace{dir: dir}, nil
}

// Dir returns the workspace's root directory.
func (w *Workspace) Dir() string {
	return w.dir
}

// PagePath returns the path a rasterized page at the given index should be
// written to. Index is zero-based; the filename preserves page order under
// lexicographic sort up to 9999 pages.
func (w *Workspace) PagePath(index int) string {
	return filepath.Join(w.dir, fmt.Sprintf("page-%04d.png", index))
}

// TilePath returns a unique scratch path for a preprocessing tile.
func (w *Workspace) TilePath(name string) string {
	return filepath.Join(w.dir, "tile-"+uuid.NewString()+"-"+name)
}

// Close deletes the workspace directory tree. Safe to call multiple times.
func (w *Workspace) Close() error {
	if w.dir == "" {
		return nil
	}
	err := os.RemoveAll(w.dir)
	w.dir = ""
	return err
}

// Keep prevents Close from deleting the directory, for diagnostics on a
// failed document. Returns the directory path so the caller can log it.
func (w *Workspace) Keep() string {
	dir := w.dir
	w.dir = ""
	return dir
}
