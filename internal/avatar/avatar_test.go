package avatar

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataURIFromValidImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), A: 0xff})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	uri := DataURI(buf.Bytes(), 32)
	assert.True(t, strings.HasPrefix(uri, "data:image/jpeg;base64,"))
	assert.NotEqual(t, Default(32), uri, "a decodable image must not fall back to the default")
}

func TestDataURIFallsBackOnGarbage(t *testing.T) {
	uri := DataURI([]byte("definitely not an image"), 32)
	assert.Equal(t, Default(32), uri)
}

func TestDataURIFallsBackOnEmpty(t *testing.T) {
	uri := DataURI(nil, 32)
	assert.Equal(t, Default(32), uri)
}
