package ocr

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// Workspace is a scratch directory owned by a single OCR call. Close removes
// it and everything inside.
type Workspace struct {
	dir string
}

// NewWorkspace creates <parent>/<prefix>-<uuid>. An empty parent means the
// system temp directory.
func NewWorkspace(parent, prefix string) (*Workspace, error) {
	if parent == "" {
		parent = os.TempDir()
	}
	dir := filepath.Join(parent, fmt.Sprintf("%s-%s", prefix, uuid.NewString()))
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	return &Workspace{dir: dir}, nil
}

// Dir returns the workspace directory.
func (w *Workspace) Dir() string { return w.dir }

// Path returns name joined onto the workspace directory.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.dir, name)
}

// WriteImage encodes img as <name>.png inside the workspace and returns the
// file path.
func (w *Workspace) WriteImage(name string, img image.Image) (string, error) {
	path := w.Path(name + ".png")
	if err := imaging.Save(img, path); err != nil {
		return "", fmt.Errorf("failed to encode temp image: %w", err)
	}
	return path, nil
}

// Close removes the workspace directory.
func (w *Workspace) Close() error {
	return os.RemoveAll(w.dir)
}
