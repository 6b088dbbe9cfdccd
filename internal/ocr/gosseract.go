//go:build cgo

package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// GosseractEngine runs Tesseract in-process through the gosseract bindings.
type GosseractEngine struct {
	// TessdataPrefix overrides the directory containing *.traineddata.
	TessdataPrefix string
}

// NewGosseractEngine returns a gosseract-backed engine.
func NewGosseractEngine(tessdataPrefix string) *GosseractEngine {
	return &GosseractEngine{TessdataPrefix: tessdataPrefix}
}

// Name returns "gosseract".
func (e *GosseractEngine) Name() string { return "gosseract" }

// HOCR recognizes the image and renders the result as hOCR.
//
// The bindings cannot be interrupted once recognition starts, so ctx is
// only checked before the client is created.
func (e *GosseractEngine) HOCR(ctx context.Context, imagePath string, opts Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if e.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(e.TessdataPrefix); err != nil {
			return "", fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}

	if err := client.SetImage(imagePath); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	if err := client.SetLanguage(opts.languages()...); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}

	if err := client.SetPageSegMode(gosseract.PageSegMode(opts.PageSegMode)); err != nil {
		return "", fmt.Errorf("failed to set page segmentation mode: %w", err)
	}

	for k, v := range opts.Variables {
		if err := client.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return "", fmt.Errorf("failed to set variable %s: %w", k, err)
		}
	}

	out, err := client.HOCRText()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return out, nil
}

// Info reports the linked Tesseract version.
func (e *GosseractEngine) Info() Info {
	client := gosseract.NewClient()
	defer client.Close()

	return Info{
		Available: true,
		Version:   client.Version(),
		Backend:   "gosseract",
	}
}
