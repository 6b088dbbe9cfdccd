package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/tesseract-words/internal/words"
)

// Default overlay colors.
const (
	DefaultAcceptedColor = "#1f9d55"
	DefaultRejectedColor = "#cc1f1a"
	DefaultRegionColor   = "#2f6fdf"
)

// OverlayOptions controls how Overlay draws word boxes.
type OverlayOptions struct {
	// Colors are hex strings ("#rrggbb" or "#rgb"). An invalid value falls
	// back to the matching default.
	AcceptedColor string
	RejectedColor string
	RegionColor   string

	// FillAlpha is the opacity of the box fill; 0 draws outlines only.
	FillAlpha uint8

	// Thickness is the outline width in pixels.
	Thickness int

	// Labels draws each word's table index next to its box.
	Labels bool
}

// DefaultOverlayOptions returns two-pixel outlines with a light fill.
func DefaultOverlayOptions() OverlayOptions {
	return OverlayOptions{
		AcceptedColor: DefaultAcceptedColor,
		RejectedColor: DefaultRejectedColor,
		RegionColor:   DefaultRegionColor,
		FillAlpha:     48,
		Thickness:     2,
	}
}

// OverlayResult is the rendered overlay.
type OverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Accepted    int    `json:"accepted"`
	Rejected    int    `json:"rejected"`
	ImageBase64 string `json:"image_base64,omitempty"`
	MimeType    string `json:"mime_type,omitempty"`

	// Image is the rendered overlay in image coordinates starting at (0,0).
	Image *image.RGBA `json:"-"`
}

// Overlay draws every word box of table on a copy of img, colored by whether
// its center falls inside region (the same test the reflow uses), and then
// outlines region itself.
func Overlay(img image.Image, table words.Table, region words.Rect, opts OverlayOptions) (*OverlayResult, error) {
	if opts.Thickness <= 0 {
		opts.Thickness = 1
	}
	accepted := ParseColor(opts.AcceptedColor, DefaultAcceptedColor)
	rejected := ParseColor(opts.RejectedColor, DefaultRejectedColor)
	regionColor := ParseColor(opts.RegionColor, DefaultRegionColor)

	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)

	res := &OverlayResult{Width: b.Dx(), Height: b.Dy(), Image: dst}
	for i, w := range table {
		c := rejected
		if cx, cy := w.Center(); region.Contains(cx, cy) {
			c = accepted
			res.Accepted++
		} else {
			res.Rejected++
		}

		box := image.Rect(w.X, w.Y, w.Right(), w.Bottom())
		if opts.FillAlpha > 0 {
			fill := c
			fill.A = opts.FillAlpha
			draw.Draw(dst, box.Intersect(dst.Bounds()), image.NewUniform(fill), image.Point{}, draw.Over)
		}
		strokeRect(dst, box, c, opts.Thickness)
		if opts.Labels {
			drawIndex(dst, box, strconv.Itoa(i), c)
		}
	}

	strokeRect(dst, image.Rect(region.X, region.Y, region.X+region.W, region.Y+region.H), regionColor, opts.Thickness)

	encoded, err := encodePNG(dst)
	if err != nil {
		return nil, err
	}
	res.ImageBase64 = encoded
	res.MimeType = "image/png"
	return res, nil
}

// ParseColor parses a hex color with go-colorful, returning fallback's color
// when hex is empty or invalid. The leading '#' is optional.
func ParseColor(hex, fallback string) color.NRGBA {
	c, err := parseHex(hex)
	if err != nil {
		c, _ = parseHex(fallback)
	}
	return c
}

func parseHex(hex string) (color.NRGBA, error) {
	if hex == "" {
		return color.NRGBA{}, fmt.Errorf("empty color string")
	}
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, err
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// strokeRect draws the outline of r, clipped to dst, with the stroke lying
// inside r.
func strokeRect(dst *image.RGBA, r image.Rectangle, c color.Color, thickness int) {
	if r.Empty() {
		return
	}
	src := image.NewUniform(c)
	t := min(thickness, r.Dx(), r.Dy())
	if t <= 0 {
		t = 1
	}
	clip := dst.Bounds()
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+t), // top
		image.Rect(r.Min.X, r.Max.Y-t, r.Max.X, r.Max.Y), // bottom
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+t, r.Max.Y), // left
		image.Rect(r.Max.X-t, r.Min.Y, r.Max.X, r.Max.Y), // right
	}
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(clip), src, image.Point{}, draw.Src)
	}
}

// drawIndex writes label above box, or inside it when there is no room.
func drawIndex(dst *image.RGBA, box image.Rectangle, label string, c color.Color) {
	face := basicfont.Face7x13
	baseline := box.Min.Y - 2
	if baseline-face.Ascent < 0 {
		baseline = box.Min.Y + face.Ascent + 1
	}

	bg := image.Rect(box.Min.X, baseline-face.Ascent, box.Min.X+len(label)*face.Advance+2, baseline+face.Descent)
	draw.Draw(dst, bg.Intersect(dst.Bounds()), image.NewUniform(color.NRGBA{255, 255, 255, 200}), image.Point{}, draw.Over)

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(box.Min.X+1, baseline),
	}
	d.DrawString(label)
}

// SaveOverlay writes img to path with bild's encoders; the format follows the
// extension (.png, .jpg/.jpeg, .bmp) and defaults to PNG.
func SaveOverlay(path string, img image.Image) error {
	var enc imgio.Encoder
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		enc = imgio.JPEGEncoder(90)
	case ".bmp":
		enc = imgio.BMPEncoder()
	default:
		enc = imgio.PNGEncoder()
	}
	if err := imgio.Save(path, img, enc); err != nil {
		return fmt.Errorf("failed to save overlay: %w", err)
	}
	return nil
}
