package asset

import (
	"path"
	"regexp"
	"strings"
)

var schemeRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.\-]*://`)

// ImageExtensions lists extensions classified as Image.
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".svg":  true,
	".bmp":  true,
	".webp": true,
	".tif":  true,
	".tiff": true,
	".ico":  true,
}

// FontExtensions lists extensions classified as Font.
var FontExtensions = map[string]bool{
	".ttf":   true,
	".otf":   true,
	".woff":  true,
	".woff2": true,
}

// VideoExtensions lists audio and video extensions, both classified as Video.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".m4v":  true,
	".mkv":  true,
	".webm": true,
	".ogv":  true,
	".avi":  true,
	".mov":  true,
	".mpg":  true,
	".mpeg": true,
	".mp3":  true,
	".ogg":  true,
	".oga":  true,
	".opus": true,
	".wav":  true,
	".flac": true,
	".m4a":  true,
}

// vectorExtensions are images without a raster decoder in the default backend.
var vectorExtensions = map[string]bool{
	".svg": true,
}

// IsRemote reports whether name starts with a "scheme://" token.
func IsRemote(name string) bool {
	return schemeRe.MatchString(name)
}

// Classify returns the kind of name judged by its extension, case-insensitively.
// Query strings and fragments of remote references are ignored.
func Classify(name string) Kind {
	ext := Ext(name)
	switch {
	case ImageExtensions[ext]:
		return Image
	case FontExtensions[ext]:
		return Font
	case VideoExtensions[ext]:
		return Video
	default:
		return Unknown
	}
}

// IsVector reports whether name is a vector image.
func IsVector(name string) bool {
	return vectorExtensions[Ext(name)]
}

// Ext returns the lowercased extension of name including the dot.
func Ext(name string) string {
	if IsRemote(name) {
		if i := strings.IndexAny(name, "?#"); i >= 0 {
			name = name[:i]
		}
	}
	return strings.ToLower(path.Ext(strings.ReplaceAll(name, "\\", "/")))
}
