package encoder

import (
	"bytes"
	"image"

	"github.com/chai2010/webp"
)

// WebPEncoder writes lossy WebP through the bundled libwebp.
type WebPEncoder struct{}

func (*WebPEncoder) Format() string    { return "webp" }
func (*WebPEncoder) Extension() string { return "webp" }
func (*WebPEncoder) Lossy() bool       { return true }
func (*WebPEncoder) Available() bool   { return true }

func (*WebPEncoder) Encode(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	opts := &webp.Options{Quality: float32(clampQuality(quality))}
	if err := webp.Encode(&buf, img, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
