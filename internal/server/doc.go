// Package server implements the MCP (Model Context Protocol) server for word
// level OCR.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// Logs go to stderr through the zerolog logger passed to New, never to stdout.
//
// # Available Tools
//
// Recognition (runs Tesseract):
//   - ocr_words: word table with boxes and confidences
//   - ocr_region_text: text of the words inside a rectangle
//   - ocr_overlay: word boxes drawn over the image, plus the region text
//   - ocr_info: engine availability and default settings
//
// Saved hOCR (no Tesseract needed):
//   - hocr_parse: hOCR markup or file to word table
//   - hocr_reflow: region text from hOCR or an explicit word table
//
// Helpers:
//   - image_dimensions: width and height, to pick region coordinates
//
// The ocr_* tools accept lang, psm and a tesseract-style config string that
// override the server defaults for that call only.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: the error string, or for malformed hOCR an object with kind,
//     word and value; for strict reflow failures an object with record
//
// # Usage
//
//	engine, _ := ocr.NewEngine(cfg.OCR)
//	srv := server.New(ocr.NewExtractor(engine), logger)
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal().Err(err).Msg("server failed")
//	}
package server
