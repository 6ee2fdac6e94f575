package asset

import "fmt"

// Kind is the media category of an item.
type Kind int

const (
	// Unknown items are dropped before they reach the manifest.
	Unknown Kind = iota
	Image
	Font
	Video
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case Image:
		return "image"
	case Font:
		return "font"
	case Video:
		return "video"
	default:
		return "unknown"
	}
}

// Size is a pixel width/height pair.
type Size struct {
	Width  int
	Height int
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Item is one discovered asset and the metadata the manifest carries for it.
type Item struct {
	// Key is the path or URL the viewer loads; unique within a manifest.
	Key string
	Kind Kind
	// Remote is set when the reference carries a URI scheme. Remote items
	// are never staged or thumbnailed.
	Remote bool

	// Source is the absolute path of the original file, or the URL for
	// remote items.
	Source string
	// Rel is the sanitized slash-separated path used to mirror the item
	// under the asset and thumbnail directories. Empty for remote items.
	Rel string

	// Alias is a display name (font metadata). Empty means absent.
	Alias string
	// Link points at the original when the displayed asset differs from
	// it, e.g. a rendered font sample. Empty means absent.
	Link string
	// ThumbnailSize is set once a thumbnail has been written.
	ThumbnailSize *Size
}

// HasProperties reports whether the item serializes with a properties object.
func (it *Item) HasProperties() bool {
	return it.Alias != "" || it.Link != "" || it.ThumbnailSize != nil
}
