package manifest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hluk/mkgallery/internal/asset"
)

// ErrMalformed is returned for manifests that were not written by Encode.
var ErrMalformed = errors.New("malformed manifest")

// Entries are decoded as JSON: Encode only escapes backslashes and
// quotes, which keeps every line a valid JSON value for ordinary names.
type properties struct {
	Alias         string  `json:"alias"`
	Link          string  `json:"link"`
	ThumbnailSize *[2]int `json:"thumbnail_size"`
}

// Decoded is a parsed manifest with its entries in file order.
type Decoded struct {
	*Manifest
	// Keys lists entry keys in file order, duplicates included.
	Keys []string
}

// ReadFile parses the manifest at path.
func ReadFile(path string) (*Decoded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse reads the text produced by Encode.
func Parse(data []byte) (*Decoded, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		d       = &Decoded{Manifest: New("")}
		lineNo  int
		state   int // 0: title, 1: list header, 2: entries, 3: done
		badLine = func(msg string) error {
			return fmt.Errorf("%w: line %d: %s", ErrMalformed, lineNo, msg)
		}
	)
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		switch state {
		case 0:
			v, ok := strings.CutPrefix(line, "var title = ")
			if !ok || !strings.HasSuffix(v, ";") {
				return nil, badLine("expected title")
			}
			if err := json.Unmarshal([]byte(strings.TrimSuffix(v, ";")), &d.Title); err != nil {
				return nil, badLine("title: " + err.Error())
			}
			state = 1
		case 1:
			if line != "var ls = [" {
				return nil, badLine("expected item list")
			}
			state = 2
		case 2:
			if line == "];" {
				state = 3
				continue
			}
			it, err := parseEntry(strings.TrimSuffix(line, ","))
			if err != nil {
				return nil, badLine(err.Error())
			}
			d.Keys = append(d.Keys, it.Key)
			d.Add(it)
		default:
			return nil, badLine("content after item list")
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if state != 3 {
		return nil, fmt.Errorf("%w: unterminated manifest", ErrMalformed)
	}
	return d, nil
}

func parseEntry(s string) (*asset.Item, error) {
	var key string
	var props properties

	if strings.HasPrefix(s, "[") {
		var pair []json.RawMessage
		if err := json.Unmarshal([]byte(s), &pair); err != nil {
			return nil, err
		}
		if len(pair) != 2 {
			return nil, fmt.Errorf("entry has %d elements, want 2", len(pair))
		}
		if err := json.Unmarshal(pair[0], &key); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(pair[1], &props); err != nil {
			return nil, err
		}
	} else if err := json.Unmarshal([]byte(s), &key); err != nil {
		return nil, err
	}
	if key == "" {
		return nil, errors.New("empty key")
	}

	it := &asset.Item{
		Key:    key,
		Kind:   asset.Classify(key),
		Remote: asset.IsRemote(key) && !strings.HasPrefix(key, "file://"),
		Alias:  props.Alias,
		Link:   props.Link,
	}
	if it.Remote {
		it.Source = key
	}
	if ts := props.ThumbnailSize; ts != nil {
		it.ThumbnailSize = &asset.Size{Width: ts[0], Height: ts[1]}
	}
	return it, nil
}
