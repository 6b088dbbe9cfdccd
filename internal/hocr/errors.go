package hocr

import (
	"errors"
	"fmt"
)

// ErrMalformed matches every *ParseError via errors.Is.
var ErrMalformed = errors.New("malformed hOCR")

// Kind classifies a parse failure.
type Kind string

const (
	KindRead       Kind = "READ"       // input could not be read
	KindEmpty      Kind = "EMPTY"      // no markup at all
	KindSyntax     Kind = "SYNTAX"     // tokenizer error or stray end tag
	KindTruncated  Kind = "TRUNCATED"  // input ends inside a tag or with elements open
	KindTitle      Kind = "TITLE"      // word element without a title attribute
	KindBBox       Kind = "BBOX"       // bbox property missing or malformed
	KindConfidence Kind = "CONFIDENCE" // x_wconf property missing or malformed
	KindGeometry   Kind = "GEOMETRY"   // x2 < x or y2 < y
)

// ParseError reports why a markup document was rejected. Word is the
// zero-based index of the offending word element, or -1 when the failure is
// not tied to a word.
type ParseError struct {
	Kind    Kind
	Message string
	Word    int
	Value   string
	Cause   error
}

// Error formats the failure as "hocr KIND: message", followed by the word
// index, the offending value and the underlying cause when present.
func (e *ParseError) Error() string {
	msg := fmt.Sprintf("hocr %s: %s", e.Kind, e.Message)
	if e.Word >= 0 {
		msg = fmt.Sprintf("%s (word %d", msg, e.Word)
		if e.Value != "" {
			msg = fmt.Sprintf("%s, %q", msg, e.Value)
		}
		msg += ")"
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the read or tokenizer error behind the failure, if any.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is makes errors.Is(err, ErrMalformed) true for any ParseError.
func (e *ParseError) Is(target error) bool {
	return target == ErrMalformed
}

func newError(kind Kind, word int, value, message string, cause error) *ParseError {
	return &ParseError{
		Kind:    kind,
		Message: message,
		Word:    word,
		Value:   value,
		Cause:   cause,
	}
}
