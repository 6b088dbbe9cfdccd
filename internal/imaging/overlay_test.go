package imaging

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/anthonynsimon/bild/imgio"

	"github.com/ironsheep/tesseract-words/internal/words"
)

func sampleTable() words.Table {
	return words.Table{
		{X: 10, Y: 10, W: 30, H: 20, Text: "inside", Conf: 90},
		{X: 60, Y: 60, W: 30, H: 20, Text: "outside", Conf: 80},
	}
}

func TestOverlay(t *testing.T) {
	img := createInMemoryImage(100, 100, color.White)
	opts := DefaultOverlayOptions()
	opts.FillAlpha = 0

	result, err := Overlay(img, sampleTable(), words.Rect{X: 0, Y: 0, W: 50, H: 50}, opts)
	if err != nil {
		t.Fatalf("Overlay failed: %v", err)
	}

	if result.Width != 100 || result.Height != 100 {
		t.Errorf("dimensions: got %dx%d, want 100x100", result.Width, result.Height)
	}
	if result.Accepted != 1 || result.Rejected != 1 {
		t.Errorf("accepted/rejected: got %d/%d, want 1/1", result.Accepted, result.Rejected)
	}
	if result.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", result.MimeType)
	}

	decoded := decodeBase64PNG(t, result.ImageBase64)
	accepted := ParseColor(DefaultAcceptedColor, "")
	rejected := ParseColor(DefaultRejectedColor, "")
	region := ParseColor(DefaultRegionColor, "")

	tests := []struct {
		name string
		x, y int
		want color.NRGBA
	}{
		{"accepted box top edge", 20, 10, accepted},
		{"rejected box left edge", 60, 70, rejected},
		{"region right edge", 49, 45, region},
		{"untouched background", 80, 20, color.NRGBA{255, 255, 255, 255}},
		{"inside accepted box", 25, 20, color.NRGBA{255, 255, 255, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b := rgb8(decoded.At(tt.x, tt.y))
			if r != tt.want.R || g != tt.want.G || b != tt.want.B {
				t.Errorf("pixel (%d,%d): got (%d,%d,%d), want (%d,%d,%d)",
					tt.x, tt.y, r, g, b, tt.want.R, tt.want.G, tt.want.B)
			}
		})
	}
}

func TestOverlay_Fill(t *testing.T) {
	img := createInMemoryImage(100, 100, color.White)
	opts := DefaultOverlayOptions()
	opts.FillAlpha = 128

	result, err := Overlay(img, sampleTable(), words.Rect{X: 0, Y: 0, W: 50, H: 50}, opts)
	if err != nil {
		t.Fatalf("Overlay failed: %v", err)
	}

	r, g, b := rgb8(result.Image.At(25, 20))
	if r == 255 && g == 255 && b == 255 {
		t.Error("box interior should be tinted")
	}
}

func TestOverlay_EmptyTable(t *testing.T) {
	img := createInMemoryImage(40, 40, color.White)

	result, err := Overlay(img, nil, words.Rect{X: 5, Y: 5, W: 10, H: 10}, DefaultOverlayOptions())
	if err != nil {
		t.Fatalf("Overlay failed: %v", err)
	}
	if result.Accepted != 0 || result.Rejected != 0 {
		t.Errorf("got %d/%d, want 0/0", result.Accepted, result.Rejected)
	}
}

func TestOverlay_DoesNotModifySource(t *testing.T) {
	img := createInMemoryImage(100, 100, color.White)

	if _, err := Overlay(img, sampleTable(), words.Rect{X: 0, Y: 0, W: 50, H: 50}, DefaultOverlayOptions()); err != nil {
		t.Fatalf("Overlay failed: %v", err)
	}
	if r, g, b := rgb8(img.At(10, 10)); r != 255 || g != 255 || b != 255 {
		t.Error("source image was modified")
	}
}

func TestOverlay_Labels(t *testing.T) {
	img := createInMemoryImage(100, 100, color.White)
	opts := DefaultOverlayOptions()
	opts.Labels = true

	withLabels, err := Overlay(img, sampleTable(), words.Rect{X: 0, Y: 0, W: 50, H: 50}, opts)
	if err != nil {
		t.Fatalf("Overlay failed: %v", err)
	}
	opts.Labels = false
	without, err := Overlay(img, sampleTable(), words.Rect{X: 0, Y: 0, W: 50, H: 50}, opts)
	if err != nil {
		t.Fatalf("Overlay failed: %v", err)
	}

	if withLabels.ImageBase64 == without.ImageBase64 {
		t.Error("labels should change the rendered image")
	}
}

func TestOverlay_BoxesOutsideImage(t *testing.T) {
	img := createInMemoryImage(50, 50, color.White)
	table := words.Table{{X: 40, Y: 40, W: 100, H: 100, Text: "edge"}, {X: 500, Y: 500, W: 10, H: 10, Text: "far"}}

	if _, err := Overlay(img, table, words.Rect{X: -10, Y: -10, W: 200, H: 200}, DefaultOverlayOptions()); err != nil {
		t.Fatalf("Overlay failed: %v", err)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		input    string
		fallback string
		want     color.NRGBA
	}{
		{"#FF0000", "#000000", color.NRGBA{255, 0, 0, 255}},
		{"00ff00", "#000000", color.NRGBA{0, 255, 0, 255}},
		{"#00f", "#000000", color.NRGBA{0, 0, 255, 255}},
		{"", "#123456", color.NRGBA{0x12, 0x34, 0x56, 255}},
		{"invalid", "#123456", color.NRGBA{0x12, 0x34, 0x56, 255}},
		{"#GGGGGG", "#ffffff", color.NRGBA{255, 255, 255, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseColor(tt.input, tt.fallback)
			if got != tt.want {
				t.Errorf("ParseColor(%q): got %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSaveOverlay(t *testing.T) {
	img := createInMemoryImage(30, 20, color.White)
	dir := t.TempDir()

	for _, name := range []string{"out.png", "out.jpg", "out.bmp", "out"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := SaveOverlay(path, img); err != nil {
				t.Fatalf("SaveOverlay failed: %v", err)
			}

			loaded, err := imgio.Open(path)
			if err != nil {
				t.Fatalf("failed to reopen %s: %v", name, err)
			}
			if loaded.Bounds() != image.Rect(0, 0, 30, 20) {
				t.Errorf("bounds: got %v", loaded.Bounds())
			}
		})
	}

	if err := SaveOverlay(filepath.Join(dir, "missing", "x.png"), img); err == nil {
		t.Error("SaveOverlay should fail when the directory does not exist")
	}
	if _, err := os.Stat(filepath.Join(dir, "missing")); !os.IsNotExist(err) {
		t.Error("SaveOverlay must not create directories")
	}
}
