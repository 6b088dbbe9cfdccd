package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/tesseract-words/internal/words"
)

// CropResult contains the cropped image data
type CropResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`

	Image *image.NRGBA `json:"-"`
}

// CropRect cuts rect out of img and optionally rescales it.
//
// rect is in image coordinates relative to img.Bounds().Min, like word boxes.
// Parts of rect outside the image are dropped; a rect that misses the image
// entirely is an error. A scale of 0 or 1 keeps the original size.
func CropRect(img image.Image, rect words.Rect, scale float64) (*CropResult, error) {
	if rect.W <= 0 || rect.H <= 0 {
		return nil, fmt.Errorf("invalid crop region %s: width and height must be positive", rect)
	}
	if scale < 0 {
		return nil, fmt.Errorf("invalid scale %g", scale)
	}

	b := img.Bounds()
	r := image.Rect(rect.X, rect.Y, rect.X+rect.W, rect.Y+rect.H).Add(b.Min).Intersect(b)
	if r.Empty() {
		return nil, fmt.Errorf("crop region %s outside image bounds %dx%d", rect, b.Dx(), b.Dy())
	}

	cropped := imaging.Crop(img, r)
	if scale != 1.0 && scale > 0 {
		newWidth := max(1, int(float64(cropped.Bounds().Dx())*scale))
		newHeight := max(1, int(float64(cropped.Bounds().Dy())*scale))
		cropped = imaging.Resize(cropped, newWidth, newHeight, imaging.Lanczos)
	}

	encoded, err := encodePNG(cropped)
	if err != nil {
		return nil, err
	}

	return &CropResult{
		Width:       cropped.Bounds().Dx(),
		Height:      cropped.Bounds().Dy(),
		ImageBase64: encoded,
		MimeType:    "image/png",
		Image:       cropped,
	}, nil
}

func encodePNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
