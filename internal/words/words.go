package words

import (
	"fmt"
	"strconv"
	"strings"
)

// Record is a single recognized word with its bounding box and confidence.
type Record struct {
	X    int    `json:"x"`    // Left edge
	Y    int    `json:"y"`    // Top edge
	W    int    `json:"w"`    // Width (x2 - x)
	H    int    `json:"h"`    // Height (y2 - y)
	Text string `json:"text"` // Recognized text, verbatim
	// Conf is the engine-reported confidence, usually 0-100. Tesseract
	// reports -1 for nodes that carry no recognized text; such values are
	// kept as is.
	Conf int `json:"conf"`
}

// FromCorners builds a Record from the engine's two-corner box.
func FromCorners(x, y, x2, y2 int, text string, conf int) Record {
	return Record{X: x, Y: y, W: x2 - x, H: y2 - y, Text: text, Conf: conf}
}

// Center returns the center of the box. Half extents are truncated.
func (r Record) Center() (int, int) {
	return r.X + r.W/2, r.Y + r.H/2
}

// Right returns the exclusive right edge (x2).
func (r Record) Right() int { return r.X + r.W }

// Bottom returns the exclusive bottom edge (y2).
func (r Record) Bottom() int { return r.Y + r.H }

// Table is an ordered sequence of Records in engine emission order.
type Table []Record

// Texts returns the text column.
func (t Table) Texts() []string {
	out := make([]string, len(t))
	for i, r := range t {
		out[i] = r.Text
	}
	return out
}

// Bounds returns the smallest Rect enclosing every record, or the zero Rect
// for an empty table.
func (t Table) Bounds() Rect {
	if len(t) == 0 {
		return Rect{}
	}
	minX, minY := t[0].X, t[0].Y
	maxX, maxY := t[0].Right(), t[0].Bottom()
	for _, r := range t[1:] {
		minX = min(minX, r.X)
		minY = min(minY, r.Y)
		maxX = max(maxX, r.Right())
		maxY = max(maxY, r.Bottom())
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Rect is a caller-supplied query rectangle in the same pixel space as the
// word boxes.
type Rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Contains reports whether (x, y) lies inside r. All four edges are
// inclusive.
func (r Rect) Contains(x, y int) bool {
	return r.X <= x && x <= r.X+r.W && r.Y <= y && y <= r.Y+r.H
}

// String renders r in the form accepted by ParseRect.
func (r Rect) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", r.X, r.Y, r.W, r.H)
}

// ParseRect parses "x,y,w,h". Whitespace around each number is ignored.
func ParseRect(s string) (Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Rect{}, fmt.Errorf("invalid region %q: want x,y,w,h", s)
	}
	var vals [4]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Rect{}, fmt.Errorf("invalid region %q: %w", s, err)
		}
		vals[i] = v
	}
	return Rect{X: vals[0], Y: vals[1], W: vals[2], H: vals[3]}, nil
}
