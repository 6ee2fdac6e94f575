package manifest

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/hluk/mkgallery/internal/asset"
	"github.com/hluk/mkgallery/internal/gallery"
)

var quoter = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func quote(s string) string {
	return `"` + quoter.Replace(s) + `"`
}

// Encode renders the manifest as JavaScript:
//
//	var title = "holiday";
//	var ls = [
//	"imgs/a.png",
//	["imgs/f.ttf",{"alias":"Example Sans Bold"}],
//	];
//
// Entries follow Sorted order; property keys appear in a fixed order.
func Encode(m *Manifest) []byte {
	var buf bytes.Buffer
	buf.WriteString("var title = ")
	buf.WriteString(quote(m.Title))
	buf.WriteString(";\nvar ls = [\n")
	for _, it := range m.Sorted() {
		encodeItem(&buf, it)
		buf.WriteString(",\n")
	}
	buf.WriteString("];\n")
	return buf.Bytes()
}

func encodeItem(buf *bytes.Buffer, it *asset.Item) {
	if !it.HasProperties() {
		buf.WriteString(quote(it.Key))
		return
	}

	buf.WriteString("[")
	buf.WriteString(quote(it.Key))
	buf.WriteString(",{")
	sep := ""
	if it.Alias != "" {
		buf.WriteString(`"alias":` + quote(it.Alias))
		sep = ","
	}
	if it.Link != "" {
		buf.WriteString(sep + `"link":` + quote(it.Link))
		sep = ","
	}
	if s := it.ThumbnailSize; s != nil {
		buf.WriteString(sep + `"thumbnail_size":[` +
			strconv.Itoa(s.Width) + "," + strconv.Itoa(s.Height) + "]")
	}
	buf.WriteString("}]")
}

// WriteJS replaces the gallery's items.js with the current manifest. The
// file is swapped in one rename, so it can be rewritten while a viewer has
// it open.
func WriteJS(g *gallery.Gallery, m *Manifest) error {
	return g.WriteFile(gallery.ManifestFile, Encode(m))
}
