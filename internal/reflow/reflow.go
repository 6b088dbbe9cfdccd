// Package reflow rebuilds readable text from the words inside a rectangle.
//
// Words are selected by their center point and joined in table order. Each
// accepted word is compared with the previously accepted one: if their
// combined vertical span is small relative to the previous word's height
// they are taken to share a line and are joined with a space, otherwise a
// newline is inserted. The engine's own line and paragraph structure is not
// consulted.
package reflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/ironsheep/tesseract-words/internal/words"
)

// DefaultLineFactor is the same-line threshold used by Reflow.
const DefaultLineFactor = 2.0

// ErrReflow matches every *Error via errors.Is.
var ErrReflow = errors.New("reflow failed")

// Error describes an anomaly found while scanning a table. Record is the
// table index of the offending record, or -1.
type Error struct {
	Record  int
	Message string
}

// Error formats the anomaly, naming the record when there is one.
func (e *Error) Error() string {
	if e.Record >= 0 {
		return fmt.Sprintf("reflow: record %d: %s", e.Record, e.Message)
	}
	return "reflow: " + e.Message
}

// Is makes errors.Is(err, ErrReflow) true for any *Error.
func (e *Error) Is(target error) bool {
	return target == ErrReflow
}

// Options tunes the line heuristic.
type Options struct {
	// LineFactor is the multiple of the previous word's footprint that the
	// union footprint may reach before a newline is emitted. Zero selects
	// DefaultLineFactor.
	LineFactor float64
	// Strict makes Apply return errors instead of an empty string.
	Strict bool
}

// DefaultOptions returns lenient options with DefaultLineFactor.
func DefaultOptions() Options {
	return Options{LineFactor: DefaultLineFactor}
}

// Reflow returns the text of the words whose centers lie inside region,
// using DefaultOptions.
//
// It never fails: an empty table yields "" and so does any anomaly in the
// input, which aborts the whole call and is logged at debug level. Use
// Strict to see the error.
func Reflow(table words.Table, region words.Rect) string {
	out, err := Strict(table, region, DefaultOptions())
	if err != nil {
		log.Debug().Err(err).Str("region", region.String()).Msg("reflow degraded to empty text")
		return ""
	}
	return out
}

// Apply runs the reflow with opts, degrading to "" on error unless
// opts.Strict is set.
func (opts Options) Apply(table words.Table, region words.Rect) (string, error) {
	out, err := Strict(table, region, opts)
	if err != nil && !opts.Strict {
		log.Debug().Err(err).Str("region", region.String()).Msg("reflow degraded to empty text")
		return "", nil
	}
	return out, err
}

// Strict is Reflow with explicit options and error reporting.
//
// Words are taken in table order; a word is accepted when its center lies
// inside region, edges included. Consecutive accepted words are joined with
// a space when they share a line and with a newline otherwise. A zero
// LineFactor means DefaultLineFactor.
//
// # Errors
//
// Strict returns a *Error, and never partial text, when the line factor is
// negative, the region has negative extent (Record -1) or a record has a
// negative width or height (Record is its index).
func Strict(table words.Table, region words.Rect, opts Options) (string, error) {
	factor := opts.LineFactor
	if factor == 0 {
		factor = DefaultLineFactor
	}
	if factor < 0 {
		return "", &Error{Record: -1, Message: fmt.Sprintf("line factor must be positive, got %g", opts.LineFactor)}
	}
	if region.W < 0 || region.H < 0 {
		return "", &Error{Record: -1, Message: fmt.Sprintf("region %s has negative extent", region)}
	}

	var (
		b    strings.Builder
		prev *words.Record
	)
	for i := range table {
		w := &table[i]
		if w.W < 0 || w.H < 0 {
			return "", &Error{Record: i, Message: fmt.Sprintf("negative box %dx%d", w.W, w.H)}
		}
		cx, cy := w.Center()
		if !region.Contains(cx, cy) {
			continue
		}
		if prev != nil {
			b.WriteString(separator(*prev, *w, factor))
		}
		b.WriteString(w.Text)
		prev = w
	}
	return b.String(), nil
}

// separator decides whether cur continues prev's line.
func separator(prev, cur words.Record, factor float64) string {
	overlapHeight := max(prev.Bottom(), cur.Bottom()) - min(prev.Y, cur.Y)
	minWidth := min(prev.W, cur.W)
	areaSameLine := minWidth * prev.H
	areaUnion := minWidth * overlapHeight
	if float64(areaUnion) <= float64(areaSameLine)*factor {
		return " "
	}
	return "\n"
}
