package ocr

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ironsheep/tesseract-words/internal/config"
)

// ErrEngineUnavailable is returned when the selected backend cannot run in
// this build or on this machine.
var ErrEngineUnavailable = errors.New("OCR engine unavailable")

// Engine runs Tesseract on an image file and returns the hOCR document.
type Engine interface {
	// Name identifies the backend ("gosseract" or "cli").
	Name() string

	// HOCR recognizes the image at imagePath and returns hOCR markup.
	HOCR(ctx context.Context, imagePath string, opts Options) (string, error)

	// Info reports whether the backend is usable and which version it runs.
	Info() Info
}

// Options are the per-call Tesseract settings.
type Options struct {
	// Language is a Tesseract language code; several may be joined with
	// "+" (e.g. "eng+deu").
	Language string

	// PageSegMode is Tesseract's --psm value (0-13).
	PageSegMode int

	// Variables are passed as "-c key=value" (CLI) or SetVariable
	// (gosseract).
	Variables map[string]string
}

// DefaultOptions returns English with fully automatic page segmentation.
func DefaultOptions() Options {
	return Options{Language: "eng", PageSegMode: 3}
}

// OptionsFromConfig builds Options from the OCR section of the config.
func OptionsFromConfig(cfg config.OCRConfig) Options {
	opts := Options{
		Language:    cfg.Language,
		PageSegMode: cfg.PageSegMode,
	}
	if len(cfg.Variables) > 0 {
		opts.Variables = make(map[string]string, len(cfg.Variables))
		for k, v := range cfg.Variables {
			opts.Variables[k] = v
		}
	}
	return opts
}

func (o Options) languages() []string {
	if o.Language == "" {
		return []string{"eng"}
	}
	return strings.Split(o.Language, "+")
}

func (o Options) language() string {
	return strings.Join(o.languages(), "+")
}

// ParseConfigString reads a tesseract-style option string such as
// "--psm 6 -l eng -c preserve_interword_spaces=1" on top of base.
func ParseConfigString(base Options, s string) (Options, error) {
	opts := base
	if len(base.Variables) > 0 {
		opts.Variables = make(map[string]string, len(base.Variables))
		for k, v := range base.Variables {
			opts.Variables[k] = v
		}
	}

	toks := strings.Fields(s)
	next := func(i int, flag string) (string, error) {
		if i+1 >= len(toks) {
			return "", fmt.Errorf("option %s needs a value", flag)
		}
		return toks[i+1], nil
	}

	for i := 0; i < len(toks); i++ {
		tok := toks[i]
		switch {
		case tok == "--psm" || strings.HasPrefix(tok, "--psm="):
			val, ok := strings.CutPrefix(tok, "--psm=")
			if !ok {
				v, err := next(i, tok)
				if err != nil {
					return base, err
				}
				val = v
				i++
			}
			psm, err := strconv.Atoi(val)
			if err != nil || psm < 0 || psm > 13 {
				return base, fmt.Errorf("invalid page segmentation mode %q", val)
			}
			opts.PageSegMode = psm
		case tok == "-l":
			v, err := next(i, tok)
			if err != nil {
				return base, err
			}
			opts.Language = v
			i++
		case tok == "-c":
			v, err := next(i, tok)
			if err != nil {
				return base, err
			}
			key, val, ok := strings.Cut(v, "=")
			if !ok || key == "" {
				return base, fmt.Errorf("invalid variable %q: want key=value", v)
			}
			if opts.Variables == nil {
				opts.Variables = make(map[string]string)
			}
			opts.Variables[key] = val
			i++
		default:
			return base, fmt.Errorf("unsupported option %q", tok)
		}
	}
	return opts, nil
}

// Info describes an engine's availability.
type Info struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
	Backend   string `json:"backend"`
}

// NewEngine returns the backend selected by cfg.Engine.
func NewEngine(cfg config.OCRConfig) (Engine, error) {
	switch cfg.Engine {
	case config.EngineGosseract, "":
		return NewGosseractEngine(cfg.TessdataPrefix), nil
	case config.EngineCLI:
		return NewCLIEngine(cfg.TesseractPath), nil
	default:
		return nil, fmt.Errorf("unknown OCR engine: %q", cfg.Engine)
	}
}
