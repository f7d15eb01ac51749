package covers

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeTestImage(t *testing.T, width, height int, asPNG bool) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 100, A: 255})
		}
	}

	var buf bytes.Buffer
	if asPNG {
		require.NoError(t, png.Encode(&buf, img))
	} else {
		require.NoError(t, jpeg.Encode(&buf, img, nil))
	}
	return buf.Bytes()
}

func decodeDataURL(t *testing.T, dataURL string) image.Image {
	t.Helper()

	require.True(t, strings.HasPrefix(dataURL, "data:image/jpeg;base64,"))
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, "data:image/jpeg;base64,"))
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return img
}

func TestProcessUpload_ScalesWideImage(t *testing.T) {
	processor := NewProcessor(400, 80)

	dataURL, err := processor.ProcessUpload(encodeTestImage(t, 800, 600, false))
	require.NoError(t, err)

	img := decodeDataURL(t, dataURL)
	assert.Equal(t, 400, img.Bounds().Dx())
	assert.Equal(t, 300, img.Bounds().Dy())
}

func TestProcessUpload_KeepsNarrowImage(t *testing.T) {
	processor := NewProcessor(400, 80)

	dataURL, err := processor.ProcessUpload(encodeTestImage(t, 200, 320, false))
	require.NoError(t, err)

	img := decodeDataURL(t, dataURL)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 320, img.Bounds().Dy())
}

func TestProcessUpload_AcceptsPNG(t *testing.T) {
	processor := NewProcessor(400, 80)

	dataURL, err := processor.ProcessUpload(encodeTestImage(t, 500, 500, true))
	require.NoError(t, err)

	// PNG input is re-encoded as JPEG.
	img := decodeDataURL(t, dataURL)
	assert.Equal(t, 400, img.Bounds().Dx())
}

func TestProcessUpload_RejectsGarbage(t *testing.T) {
	processor := NewProcessor(400, 80)

	_, err := processor.ProcessUpload([]byte("this is not an image"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestNewProcessor_Defaults(t *testing.T) {
	processor := NewProcessor(0, 0)
	assert.Equal(t, 400, processor.maxWidth)
	assert.Equal(t, 80, processor.jpegQuality)
}
