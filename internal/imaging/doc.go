// Package imaging holds the pixel-level helpers around OCR: a decoded-image
// cache, debug overlays of word boxes, and region crops.
//
// # Coordinate System
//
// Coordinates match hOCR bounding boxes: (0,0) is the top-left pixel of the
// image, X grows rightward and Y downward. Images whose bounds do not start at
// the origin are treated as if they did.
//
// # Overlays
//
// Overlay colors each word box by whether its center lies inside the query
// region, which is exactly the acceptance test of the reflow engine. That makes
// the overlay the quickest way to see why a word did or did not show up in
// region text. Results come back as base64 PNG for MCP clients; SaveOverlay
// writes them to disk.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Overlay and CropRect never modify
// their input image.
package imaging
