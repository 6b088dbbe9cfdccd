package ocr

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/tesseract-words/internal/words"
)

// drawText draws text on an image using basicfont
func drawText(img *image.RGBA, x, y int, text string, col color.Color) {
	point := fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  point,
	}
	d.DrawString(text)
}

// createLinesImage renders each line with basicfont and scales the result up
// so Tesseract has enough pixels to work with.
func createLinesImage(lines []string, scale int) *image.RGBA {
	maxLen := 0
	for _, line := range lines {
		if len(line) > maxLen {
			maxLen = len(line)
		}
	}

	w := maxLen*7 + 40
	h := len(lines)*20 + 30

	small := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(small, small.Bounds(), image.White, image.Point{}, draw.Src)
	for i, line := range lines {
		drawText(small, 20, 25+i*20, line, color.Black)
	}

	img := image.NewRGBA(image.Rect(0, 0, w*scale, h*scale))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := small.At(x, y)
			for dy := 0; dy < scale; dy++ {
				for dx := 0; dx < scale; dx++ {
					img.Set(x*scale+dx, y*scale+dy, c)
				}
			}
		}
	}
	return img
}

// availableEngine returns a working real engine or skips the test.
func availableEngine(t *testing.T) Engine {
	t.Helper()
	for _, e := range []Engine{NewGosseractEngine(""), NewCLIEngine("")} {
		if e.Info().Available {
			return e
		}
	}
	t.Skip("Tesseract not available")
	return nil
}

func TestRealEngine_Words(t *testing.T) {
	engine := availableEngine(t)
	x := NewExtractor(engine)

	img := createLinesImage([]string{"HELLO WORLD"}, 4)
	table, err := x.Words(context.Background(), img, "")
	if err != nil {
		t.Fatalf("Words failed: %v", err)
	}

	if len(table) == 0 {
		t.Fatal("expected at least one word")
	}
	for i, r := range table {
		if r.W < 0 || r.H < 0 {
			t.Errorf("word %d has negative extent: %+v", i, r)
		}
	}
}

func TestRealEngine_RegionText(t *testing.T) {
	engine := availableEngine(t)
	x := NewExtractor(engine)

	img := createLinesImage([]string{"HELLO WORLD", "SECOND LINE"}, 4)
	b := img.Bounds()
	text, err := x.RegionText(context.Background(), img, "", words.Rect{X: 0, Y: 0, W: b.Dx(), H: b.Dy()})
	if err != nil {
		t.Fatalf("RegionText failed: %v", err)
	}

	// Recognition quality is not under test; only the line structure is.
	if text != "" && !strings.Contains(text, "\n") {
		t.Logf("single line recognized: %q", text)
	}
}

func TestRealEngine_NonExistentFile(t *testing.T) {
	engine := availableEngine(t)

	_, err := engine.HOCR(context.Background(), "/nonexistent/path/image.png", DefaultOptions())
	if err == nil {
		t.Error("HOCR should fail for non-existent file")
	}
}

func TestGosseractEngine_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGosseractEngine("").HOCR(ctx, "/nonexistent.png", DefaultOptions())
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, context.Canceled) && !errors.Is(err, ErrEngineUnavailable) {
		t.Errorf("unexpected error: %v", err)
	}
}
