// Package words defines the word table produced from OCR output.
//
// A Table is an ordered slice of Records in the order the OCR engine emitted
// them. Nothing in this module re-sorts or mutates a Table once it has been
// built, so a single Table can be shared between goroutines and queried with
// many regions at once.
//
// # Coordinate System
//
// Coordinates are integer pixels with (0,0) at the top-left corner of the
// image, X increasing rightward and Y increasing downward. A Record stores
// its top-left corner plus width and height; the engine's two-corner box
// (x, y, x2, y2) maps to W = x2 - x and H = y2 - y.
//
// # Output
//
// WriteTSV and WriteJSON render a Table with exactly the columns
// x, y, w, h, text, conf.
package words
