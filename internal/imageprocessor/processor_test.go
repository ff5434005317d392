package imageprocessor

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestThumbnail_KeepsAspectRatio(t *testing.T) {
	p := NewProcessor(80)

	res, err := p.Thumbnail(bytes.NewReader(pngBytes(t, 400, 200)), 100)
	require.NoError(t, err)
	assert.Equal(t, 100, res.Width)
	assert.Equal(t, 50, res.Height)
	assert.Equal(t, "image/png", res.ContentType)
	assert.Equal(t, ".png", res.Extension())

	decoded, _, err := image.Decode(bytes.NewReader(res.Data))
	require.NoError(t, err)
	assert.Equal(t, 100, decoded.Bounds().Dx())
}

func TestThumbnail_DoesNotUpscale(t *testing.T) {
	p := NewProcessor(0)

	res, err := p.Thumbnail(bytes.NewReader(pngBytes(t, 40, 30)), 256)
	require.NoError(t, err)
	assert.Equal(t, 40, res.Width)
	assert.Equal(t, 30, res.Height)
}

func TestThumbnail_RejectsGarbage(t *testing.T) {
	p := NewProcessor(85)

	_, err := p.Thumbnail(bytes.NewReader([]byte("definitely not an image")), 100)
	assert.ErrorIs(t, err, ErrNotAnImage)
}
