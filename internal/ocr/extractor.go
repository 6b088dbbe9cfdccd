package ocr

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ironsheep/tesseract-words/internal/hocr"
	"github.com/ironsheep/tesseract-words/internal/reflow"
	"github.com/ironsheep/tesseract-words/internal/words"
)

// DefaultName is used for saved hOCR files when the caller gives no name.
const DefaultName = "out"

// Extractor drives an Engine and turns its output into word tables and
// region text.
//
// An Extractor holds no per-call state and may be shared between
// goroutines as long as its fields are not modified.
type Extractor struct {
	Engine  Engine
	Options Options

	// HOCRDir, when set, receives <name>.hocr for every recognized image.
	HOCRDir string

	// TempDir is the parent for scratch workspaces; empty means os.TempDir.
	TempDir string

	// Timeout bounds each engine call; zero means no limit beyond ctx.
	Timeout time.Duration

	// Reflow is the policy used by RegionText; the zero value is lenient
	// with the default line factor.
	Reflow reflow.Options
	Logger zerolog.Logger
}

// NewExtractor returns an Extractor with default options and a disabled
// logger.
func NewExtractor(engine Engine) *Extractor {
	return &Extractor{
		Engine:  engine,
		Options: DefaultOptions(),
		Reflow:  reflow.DefaultOptions(),
		Logger:  zerolog.Nop(),
	}
}

// HOCRFromFile runs the engine on an image file and returns the raw hOCR.
func (x *Extractor) HOCRFromFile(ctx context.Context, imagePath, name string) (string, error) {
	if name == "" {
		name = nameFromPath(imagePath)
	}
	if x.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, x.Timeout)
		defer cancel()
	}

	start := time.Now()
	markup, err := x.Engine.HOCR(ctx, imagePath, x.Options)
	if err != nil {
		x.Logger.Error().Err(err).Str("engine", x.Engine.Name()).Str("image", imagePath).Msg("ocr failed")
		return "", fmt.Errorf("%s engine: %w", x.Engine.Name(), err)
	}
	x.Logger.Debug().
		Str("engine", x.Engine.Name()).
		Str("image", imagePath).
		Dur("elapsed", time.Since(start)).
		Int("bytes", len(markup)).
		Msg("ocr complete")

	if x.HOCRDir != "" {
		if err := x.save(name, markup); err != nil {
			return "", err
		}
	}
	return markup, nil
}

// WordsFromFile recognizes an image file and parses the result.
// Parse failures are returned unwrapped as *hocr.ParseError.
func (x *Extractor) WordsFromFile(ctx context.Context, imagePath, name string) (words.Table, error) {
	markup, err := x.HOCRFromFile(ctx, imagePath, name)
	if err != nil {
		return nil, err
	}
	table, err := hocr.ParseString(markup)
	if err != nil {
		return nil, err
	}
	x.Logger.Debug().Str("image", imagePath).Int("words", len(table)).Msg("parsed hOCR")
	return table, nil
}

// Words writes img to a scratch workspace, recognizes it and parses the
// result. The workspace is removed before Words returns.
//
// Parameters:
//   - ctx: cancels the engine call; Timeout, when set, is applied on top
//   - img: the page to recognize, written as PNG
//   - name: base name of the saved hOCR file; empty means DefaultName
//
// # Errors
//
// Engine failures are wrapped with the engine name. Malformed engine output
// is returned as the *hocr.ParseError itself so callers can errors.As it.
func (x *Extractor) Words(ctx context.Context, img image.Image, name string) (words.Table, error) {
	if name == "" {
		name = DefaultName
	}
	ws, err := NewWorkspace(x.TempDir, "tesseract-words")
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := ws.Close(); err != nil {
			x.Logger.Warn().Err(err).Str("dir", ws.Dir()).Msg("failed to remove workspace")
		}
	}()

	path, err := ws.WriteImage("input", img)
	if err != nil {
		return nil, err
	}
	return x.WordsFromFile(ctx, path, name)
}

// RegionText recognizes img and reflows the words inside region.
func (x *Extractor) RegionText(ctx context.Context, img image.Image, name string, region words.Rect) (string, error) {
	table, err := x.Words(ctx, img, name)
	if err != nil {
		return "", err
	}
	return x.Reflow.Apply(table, region)
}

// RegionTextFromFile is RegionText for an image on disk.
func (x *Extractor) RegionTextFromFile(ctx context.Context, imagePath, name string, region words.Rect) (string, error) {
	table, err := x.WordsFromFile(ctx, imagePath, name)
	if err != nil {
		return "", err
	}
	return x.Reflow.Apply(table, region)
}

// save writes markup to <HOCRDir>/<name>.hocr. Only the last element of
// name is used, so the file always lands inside HOCRDir.
func (x *Extractor) save(name, markup string) error {
	name = filepath.Base(filepath.Clean("/" + name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = DefaultName
	}
	if err := os.MkdirAll(x.HOCRDir, 0o755); err != nil {
		return fmt.Errorf("failed to create hOCR directory: %w", err)
	}
	path := filepath.Join(x.HOCRDir, name+".hocr")
	if err := os.WriteFile(path, []byte(markup), 0o644); err != nil {
		return fmt.Errorf("failed to save hOCR: %w", err)
	}
	x.Logger.Debug().Str("path", path).Msg("saved hOCR")
	return nil
}

func nameFromPath(path string) string {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return DefaultName
	}
	return name
}
