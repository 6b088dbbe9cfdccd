//go:build !cgo

package ocr

import (
	"context"
	"fmt"
)

// GosseractEngine is unavailable without cgo; use the CLI engine instead.
type GosseractEngine struct {
	TessdataPrefix string
}

// NewGosseractEngine returns a stub that always fails.
func NewGosseractEngine(tessdataPrefix string) *GosseractEngine {
	return &GosseractEngine{TessdataPrefix: tessdataPrefix}
}

// Name returns "gosseract" so configuration selects this engine the same
// way with or without cgo.
func (e *GosseractEngine) Name() string { return "gosseract" }

// HOCR always fails with ErrEngineUnavailable.
func (e *GosseractEngine) HOCR(ctx context.Context, imagePath string, opts Options) (string, error) {
	return "", fmt.Errorf("%w: built without cgo", ErrEngineUnavailable)
}

// Info reports the engine as unavailable.
func (e *GosseractEngine) Info() Info {
	return Info{
		Available: false,
		Error:     "built without cgo",
		Backend:   "gosseract",
	}
}
