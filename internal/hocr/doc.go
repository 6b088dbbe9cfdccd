// Package hocr turns Tesseract hOCR output into a words.Table.
//
// hOCR is HTML in which every recognized word is an element carrying the
// class "ocrx_word" and a title attribute such as
//
//	<span class='ocrx_word' id='word_1_1' title='bbox 36 92 96 116; x_wconf 90'>Hello</span>
//
// The parser keeps only word elements. Page, area, paragraph and line
// containers are ignored on purpose: line grouping is recomputed from the
// word boxes by package reflow.
//
// # Errors
//
// Parsing is all-or-nothing. Empty input, truncated markup, stray end tags
// and any word whose title lacks a well-formed bbox or x_wconf property make
// Parse return a *ParseError, which matches ErrMalformed under errors.Is.
package hocr
