// Package avatar renders stored avatar blobs as inline data URIs.
package avatar

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// DataURI decodes the stored image, thumbnails it to a size x size
// square and returns a base64 JPEG data URI. Absent or undecodable
// data falls back to the generated default avatar.
func DataURI(data []byte, size int) string {
	if len(data) == 0 {
		return Default(size)
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return Default(size)
	}
	return encode(imaging.Thumbnail(img, size, size, imaging.Lanczos))
}

// Default returns the fallback avatar: a flat placeholder square.
func Default(size int) string {
	img := imaging.New(size, size, color.NRGBA{R: 0x9e, G: 0x9e, B: 0x9e, A: 0xff})
	return encode(img)
}

func encode(img image.Image) string {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG); err != nil {
		return ""
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}
