package font

import (
	"bytes"
	"regexp"
	"slices"
	"strings"

	"github.com/hluk/mkgallery/internal/hasher"
)

var nonIdent = regexp.MustCompile(`[^a-z0-9_]+`)

// Identifier folds name to lowercase and collapses every run of characters
// outside [a-z0-9_] into a single underscore.
func Identifier(name string) string {
	return nonIdent.ReplaceAllString(strings.ToLower(name), "_")
}

// Rule maps a font family identifier to the URL of the font file.
type Rule struct {
	Family string
	URL    string
}

// Stylesheet collects one @font-face rule per font URL. Family identifiers
// are unique within a stylesheet.
type Stylesheet struct {
	rules    []Rule
	urls     map[string]string
	families map[string]string
}

func NewStylesheet() *Stylesheet {
	return &Stylesheet{
		urls:     make(map[string]string),
		families: make(map[string]string),
	}
}

// Add registers url under the identifier derived from name and returns the
// identifier. Two different fonts with the same name get distinct
// identifiers; adding the same url again is a no-op.
func (s *Stylesheet) Add(name, url string) string {
	if id, ok := s.urls[url]; ok {
		return id
	}
	id := Identifier(name)
	if _, taken := s.families[id]; taken {
		id += "_" + hasher.Short(url, 8)
	}
	s.urls[url] = id
	s.families[id] = url
	s.rules = append(s.rules, Rule{Family: id, URL: url})
	return id
}

// Rules returns the rules ordered case-insensitively by URL, the order the
// manifest lists items in.
func (s *Stylesheet) Rules() []Rule {
	rules := slices.Clone(s.rules)
	slices.SortFunc(rules, func(a, b Rule) int {
		if c := strings.Compare(strings.ToLower(a.URL), strings.ToLower(b.URL)); c != 0 {
			return c
		}
		return strings.Compare(a.URL, b.URL)
	})
	return rules
}

// Len returns the number of rules.
func (s *Stylesheet) Len() int { return len(s.rules) }

var cssString = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// Encode renders the stylesheet, one rule per line.
func (s *Stylesheet) Encode() []byte {
	var buf bytes.Buffer
	for _, r := range s.Rules() {
		buf.WriteString("@font-face{font-family:")
		buf.WriteString(r.Family)
		buf.WriteString(";src:url('")
		buf.WriteString(cssString.Replace(r.URL))
		buf.WriteString("');}\n")
	}
	return buf.Bytes()
}
