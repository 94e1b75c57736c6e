// Package imaging compresses cart thumbnails to JPEG.
package imaging

import (
	"bytes"
	"image"
	"image/jpeg"

	// Decoders for the formats the remote catalog serves.
	_ "image/gif"
	_ "image/png"

	"github.com/go-faster/errors"
	_ "golang.org/x/image/webp"
)

// DefaultQuality is the JPEG quality used for thumbnails.
const DefaultQuality = 80

// JPEGCodec re-encodes any decodable image as JPEG.
type JPEGCodec struct {
	quality int
}

// NewJPEGCodec creates a codec. quality is clamped to [1, 100].
func NewJPEGCodec(quality int) *JPEGCodec {
	switch {
	case quality < 1:
		quality = 1
	case quality > 100:
		quality = 100
	}
	return &JPEGCodec{quality: quality}
}

// Encode decodes raw and re-encodes it as JPEG.
func (c *JPEGCodec) Encode(raw []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(err, "decode source image")
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: c.quality}); err != nil {
		return nil, errors.Wrap(err, "encode jpeg")
	}
	return buf.Bytes(), nil
}

// Decode turns stored thumbnail bytes into an image.
func (c *JPEGCodec) Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "decode thumbnail")
	}
	return img, nil
}
