// Package encoder turns decoded images into thumbnail and sample files.
package encoder

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
)

// DefaultQuality is used when a caller passes a quality outside 1-100.
const DefaultQuality = 85

// Encoder writes one image format.
type Encoder interface {
	// Format is the registry name, e.g. "jpeg".
	Format() string
	// Extension is the file suffix without the dot.
	Extension() string
	// Lossy reports whether quality has any effect.
	Lossy() bool
	Available() bool

	Encode(img image.Image, quality int) ([]byte, error)
}

func clampQuality(q int) int {
	if q <= 0 || q > 100 {
		return DefaultQuality
	}
	return q
}

// JPEGEncoder is the default thumbnail encoder.
type JPEGEncoder struct{}

func (*JPEGEncoder) Format() string    { return "jpeg" }
func (*JPEGEncoder) Extension() string { return "jpg" }
func (*JPEGEncoder) Lossy() bool       { return true }
func (*JPEGEncoder) Available() bool   { return true }

func (*JPEGEncoder) Encode(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(32 * 1024)
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: clampQuality(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PNGEncoder keeps rendered font samples sharp. Quality is ignored.
type PNGEncoder struct{}

func (*PNGEncoder) Format() string    { return "png" }
func (*PNGEncoder) Extension() string { return "png" }
func (*PNGEncoder) Lossy() bool       { return false }
func (*PNGEncoder) Available() bool   { return true }

func (*PNGEncoder) Encode(img image.Image, _ int) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
