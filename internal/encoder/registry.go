package encoder

import (
	"fmt"
	"strings"
)

// Registry indexes the encoders usable in this build by format name.
type Registry struct {
	order    []string
	encoders map[string]Encoder
}

// NewRegistry probes every known encoder and keeps the available ones.
func NewRegistry() *Registry {
	r := &Registry{encoders: make(map[string]Encoder)}
	for _, enc := range []Encoder{&JPEGEncoder{}, &WebPEncoder{}, &PNGEncoder{}} {
		if !enc.Available() {
			continue
		}
		r.order = append(r.order, enc.Format())
		r.encoders[enc.Format()] = enc
	}
	return r
}

// Get returns the encoder for format, or nil. "jpg" names JPEG too.
func (r *Registry) Get(format string) Encoder {
	format = strings.ToLower(format)
	if format == "jpg" {
		format = "jpeg"
	}
	return r.encoders[format]
}

// Thumbnail returns the encoder for thumbnails in format. Thumbnails are
// always lossy.
func (r *Registry) Thumbnail(format string) (Encoder, error) {
	enc := r.Get(format)
	if enc == nil || !enc.Lossy() {
		return nil, fmt.Errorf("unsupported thumbnail format %q (have %s)", format, strings.Join(r.thumbnailFormats(), ", "))
	}
	return enc, nil
}

// ThumbnailExtensions lists the suffixes a thumbnail may carry.
func (r *Registry) ThumbnailExtensions() []string {
	var exts []string
	for _, f := range r.thumbnailFormats() {
		exts = append(exts, r.encoders[f].Extension())
	}
	return exts
}

func (r *Registry) thumbnailFormats() []string {
	var formats []string
	for _, f := range r.order {
		if r.encoders[f].Lossy() {
			formats = append(formats, f)
		}
	}
	return formats
}

// Available returns the available format names in preference order.
func (r *Registry) Available() []string {
	return append([]string(nil), r.order...)
}

func (r *Registry) String() string {
	if len(r.order) == 0 {
		return "no encoders available"
	}
	return "encoders: " + strings.Join(r.order, ", ")
}
