package imageprocessor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	// decoders for formats accepted as logos
	_ "image/gif"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ErrNotAnImage is returned when the payload cannot be decoded as an image.
var ErrNotAnImage = errors.New("payload is not a decodable image")

// Processor handles image processing operations
type Processor struct {
	quality int // JPEG quality (1-100)
}

// NewProcessor creates a new image processor
func NewProcessor(quality int) *Processor {
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	return &Processor{quality: quality}
}

// Result is an encoded variant of an image.
type Result struct {
	Data        []byte
	Format      string // jpeg or png
	ContentType string
	Width       int
	Height      int
}

// Extension returns the file extension matching the encoded format.
func (r *Result) Extension() string {
	if r.Format == "jpeg" {
		return ".jpg"
	}
	return ".png"
}

// Thumbnail decodes an image and fits it into a maxSide x maxSide box.
// Images that already fit are re-encoded without upscaling.
// JPEG input stays JPEG; everything else is written as PNG to keep transparency.
func (p *Processor) Thumbnail(reader io.Reader, maxSide int) (*Result, error) {
	img, format, err := image.Decode(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}

	resized := p.fit(img, maxSide)
	bounds := resized.Bounds()

	var buf bytes.Buffer
	result := &Result{Width: bounds.Dx(), Height: bounds.Dy()}

	if format == "jpeg" {
		if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: p.quality}); err != nil {
			return nil, fmt.Errorf("failed to encode JPEG: %w", err)
		}
		result.Format, result.ContentType = "jpeg", "image/jpeg"
	} else {
		if err := png.Encode(&buf, resized); err != nil {
			return nil, fmt.Errorf("failed to encode PNG: %w", err)
		}
		result.Format, result.ContentType = "png", "image/png"
	}

	result.Data = buf.Bytes()
	return result, nil
}

// fit resizes an image maintaining aspect ratio
func (p *Processor) fit(img image.Image, maxSide int) image.Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if maxSide <= 0 || (width <= maxSide && height <= maxSide) {
		return img
	}

	newWidth, newHeight := maxSide, maxSide
	if width > height {
		newHeight = max(1, height*maxSide/width)
	} else {
		newWidth = max(1, width*maxSide/height)
	}

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
