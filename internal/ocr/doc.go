// Package ocr runs Tesseract in hOCR mode and turns the result into word
// tables and region text.
//
// Two backends implement Engine:
//
//   - GosseractEngine calls libtesseract in-process through gosseract/v2.
//     It needs cgo; builds without cgo get a stub that reports
//     ErrEngineUnavailable.
//   - CLIEngine runs the tesseract executable with the "hocr" config and
//     reads the <base>.hocr file it writes.
//
// # Prerequisites
//
// Tesseract and its language data must be installed:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// The gosseract backend also needs the libtesseract/libleptonica headers at
// build time (libtesseract-dev, libleptonica-dev).
//
// # Extractor
//
// Extractor ties an Engine to the hocr parser and the reflow engine:
//
//   - Words / WordsFromFile: image to words.Table
//   - RegionText / RegionTextFromFile: image plus rectangle to text
//   - HOCRFromFile: raw hOCR, optionally saved as <HOCRDir>/<name>.hocr
//
// In-memory images are written to a per-call Workspace (a uuid-named temp
// directory) because both backends read from a file path. The workspace is
// removed when the call returns, whether or not it succeeded.
//
// # Error Handling
//
// Engine failures are wrapped with the engine name. hOCR parse failures are
// returned unchanged so callers can use errors.As with *hocr.ParseError.
// Nothing is retried.
package ocr
