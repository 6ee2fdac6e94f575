package materialize

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/hluk/mkgallery/internal/hasher"
)

var reserved = strings.NewReplacer(
	":", "_",
	"\\", "_",
	"?", "_",
	"#", "_",
)

// SafeRel turns a local path, relative or absolute, into a slash-separated
// relative path that is safe to use as a URL component and cannot escape
// the directory it is joined onto. Absolute paths keep their full
// structure below the root; ".." segments become "__".
func SafeRel(p string) string {
	p = filepath.ToSlash(filepath.Clean(p))
	p = strings.TrimLeft(p, "/")

	parts := strings.Split(p, "/")
	out := parts[:0]
	for _, part := range parts {
		switch part {
		case "", ".":
			continue
		case "..":
			part = "__"
		}
		out = append(out, reserved.Replace(part))
	}
	return strings.Join(out, "/")
}

// LocalURL returns the file:// URL of an absolute path. Characters with a
// meaning in URLs, such as "#" and "?", are percent-escaped.
func LocalURL(abs string) string {
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}

// LocalPath is the inverse of LocalURL.
func LocalPath(key string) (string, error) {
	u, err := url.Parse(key)
	if err != nil {
		return "", err
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("not a file URL: %s", key)
	}
	return filepath.FromSlash(u.Path), nil
}

// LocalRels lists the relative paths a local-mode item for abs may have
// been assigned, preferred first.
func LocalRels(abs string) []string {
	rel := SafeRel(abs)
	return []string{rel, disambiguate(rel, abs)}
}

// disambiguate inserts a short digest of source before the extension of rel.
func disambiguate(rel, source string) string {
	ext := path.Ext(rel)
	return strings.TrimSuffix(rel, ext) + "~" + hasher.Short(source, 8) + ext
}
