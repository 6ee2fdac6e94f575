package asset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		want Kind
	}{
		{"a.png", Image},
		{"b.PNG", Image},
		{"dir/c.JpEg", Image},
		{"logo.svg", Image},
		{"font.ttf", Font},
		{"FONT.OTF", Font},
		{"web.woff2", Font},
		{"clip.webm", Video},
		{"song.mp3", Video},
		{"notes.txt", Unknown},
		{"png", Unknown},
		{"archive.png.zip", Unknown},
		{"https://example.com/x.jpg?size=large#top", Image},
		{"https://example.com/page", Unknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.name))
		})
	}
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("http://example.com/a.png"))
	assert.True(t, IsRemote("s3+https://bucket/a.png"))
	assert.True(t, IsRemote("file:///home/user/a.png"))
	assert.False(t, IsRemote("/home/user/a.png"))
	assert.False(t, IsRemote("C:\\photos\\a.png"))
	assert.False(t, IsRemote("weird:name.png"))
	assert.False(t, IsRemote("://missing-scheme"))
}

func TestItemHasProperties(t *testing.T) {
	it := &Item{Key: "imgs/a.png", Kind: Image}
	assert.False(t, it.HasProperties())

	it.ThumbnailSize = &Size{Width: 10, Height: 5}
	assert.True(t, it.HasProperties())
	assert.Equal(t, "10x5", it.ThumbnailSize.String())
}
