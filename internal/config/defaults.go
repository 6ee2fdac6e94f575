package config

// Default values.
const (
	DefaultTitle            = "default"
	DefaultResolution       = 300
	DefaultProgressWidth    = 40
	DefaultThumbnailFormat  = FormatJPEG
	DefaultThumbnailQuality = 85
	DefaultFontSize         = 16
	DefaultFontText         = `The quick brown fox jumps over the lazy dog.\n` +
		`0123456789 .,:;?!=+-*/\&@#$%<>()[]{}\n` +
		`Příšerně žluťoučký kůň úpěl ďábelské ódy`
)

// Thumbnail formats.
const (
	FormatJPEG = "jpeg"
	FormatWebP = "webp"
)

// Thumbnail backends.
const (
	BackendAuto    = "auto"
	BackendImaging = "imaging"
	BackendVips    = "vips"
)
