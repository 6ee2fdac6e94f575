package manifest

import (
	"slices"
	"strings"

	"github.com/hluk/mkgallery/internal/asset"
)

// Manifest is the title and item list a viewer loads from items.js.
type Manifest struct {
	Title string
	items map[string]*asset.Item
}

// Stats aggregates manifest contents.
type Stats struct {
	Items      int
	Images     int
	Fonts      int
	Videos     int
	Remote     int
	Thumbnails int
	Aliases    int
	Links      int
}

// New creates an empty manifest.
func New(title string) *Manifest {
	return &Manifest{
		Title: title,
		items: make(map[string]*asset.Item),
	}
}

// Add inserts it unless an item with the same key is already present.
// It reports whether it was added.
func (m *Manifest) Add(it *asset.Item) bool {
	if _, ok := m.items[it.Key]; ok {
		return false
	}
	m.items[it.Key] = it
	return true
}

// Len returns the number of items.
func (m *Manifest) Len() int { return len(m.items) }

// Get returns the item with key, or nil.
func (m *Manifest) Get(key string) *asset.Item { return m.items[key] }

// Sorted returns the items ordered by key, case-insensitively. Keys equal
// up to case are ordered bytewise so the order is total.
func (m *Manifest) Sorted() []*asset.Item {
	items := make([]*asset.Item, 0, len(m.items))
	for _, it := range m.items {
		items = append(items, it)
	}
	slices.SortFunc(items, func(a, b *asset.Item) int {
		return CompareKeys(a.Key, b.Key)
	})
	return items
}

// CompareKeys orders manifest keys.
func CompareKeys(a, b string) int {
	if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// ComputeStats counts items per kind and property.
func (m *Manifest) ComputeStats() Stats {
	var s Stats
	s.Items = len(m.items)
	for _, it := range m.items {
		switch it.Kind {
		case asset.Image:
			s.Images++
		case asset.Font:
			s.Fonts++
		case asset.Video:
			s.Videos++
		}
		if it.Remote {
			s.Remote++
		}
		if it.ThumbnailSize != nil {
			s.Thumbnails++
		}
		if it.Alias != "" {
			s.Aliases++
		}
		if it.Link != "" {
			s.Links++
		}
	}
	return s
}
