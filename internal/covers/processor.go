// Package covers handles book cover images: uploaded files are scaled
// down and stored inline as data URLs, remote cover URLs are cached on
// disk.
package covers

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

var (
	// ErrUnsupportedImage is returned for files that are not decodable
	// JPEG or PNG images.
	ErrUnsupportedImage = errors.New("unsupported or corrupt image")
)

// Processor normalizes uploaded cover images.
type Processor struct {
	maxWidth    int
	jpegQuality int
}

// NewProcessor creates a processor. Images wider than maxWidth are
// scaled down proportionally; narrower images are kept at their size.
func NewProcessor(maxWidth, jpegQuality int) *Processor {
	if maxWidth <= 0 {
		maxWidth = 400
	}
	if jpegQuality <= 0 || jpegQuality > 100 {
		jpegQuality = 80
	}
	return &Processor{
		maxWidth:    maxWidth,
		jpegQuality: jpegQuality,
	}
}

// ProcessUpload decodes an uploaded image, scales it to the maximum
// width and returns it as an inline data URL suitable for storing in
// the book record.
func (p *Processor) ProcessUpload(data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	img = p.scale(img)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.jpegQuality}); err != nil {
		return "", fmt.Errorf("encode cover: %w", err)
	}

	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// scale resizes the image down to maxWidth, preserving aspect ratio.
// Images already narrow enough pass through untouched.
func (p *Processor) scale(img image.Image) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	if width <= p.maxWidth {
		return img
	}

	height := bounds.Dy() * p.maxWidth / width
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, p.maxWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
