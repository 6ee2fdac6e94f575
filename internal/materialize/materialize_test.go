package materialize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hluk/mkgallery/internal/asset"
	"github.com/hluk/mkgallery/internal/gallery"
)

func TestSafeRel(t *testing.T) {
	cases := map[string]string{
		"photos/a.png":         "photos/a.png",
		"./photos/./a.png":     "photos/a.png",
		"/home/user/a.png":     "home/user/a.png",
		"../shared/b.png":      "__/shared/b.png",
		"photos/a:b.png":       "photos/a_b.png",
		"odd#name?.png":        "odd_name_.png",
		"photos//nested/c.gif": "photos/nested/c.gif",
	}
	for in, want := range cases {
		assert.Equal(t, want, SafeRel(in), in)
	}
}

func TestLocalURL(t *testing.T) {
	assert.Equal(t, "file:///home/user/a.png", LocalURL("/home/user/a.png"))
	assert.Equal(t, "file:///home/user/50%25%20off%23%3F.png", LocalURL("/home/user/50% off#?.png"))

	for _, p := range []string{"/home/user/a.png", "/home/user/50% off#?.png"} {
		back, err := LocalPath(LocalURL(p))
		require.NoError(t, err)
		assert.Equal(t, filepath.FromSlash(p), back)
	}
	_, err := LocalPath("https://example.com/a.png")
	assert.Error(t, err)
}

type fixture struct {
	src     string
	gallery *gallery.Gallery
}

func newFixture(t *testing.T, files ...string) fixture {
	t.Helper()
	src := t.TempDir()
	for _, f := range files {
		p := filepath.Join(src, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("data:"+f), 0o644))
	}
	g, err := gallery.Open(filepath.Join(t.TempDir(), "gallery"))
	require.NoError(t, err)
	require.NoError(t, g.PrepareAssets(false))
	return fixture{src: src, gallery: g}
}

func TestStageCopy(t *testing.T) {
	fx := newFixture(t, "photos/a.png", "fonts/f.ttf", "notes.txt")
	t.Chdir(fx.src)

	m, err := New(fx.gallery, Options{Copy: true})
	require.NoError(t, err)
	assert.Equal(t, Copy, m.Strategy())

	it, err := m.Stage("photos/a.png")
	require.NoError(t, err)
	require.NotNil(t, it)
	assert.Equal(t, "imgs/photos/a.png", it.Key)
	assert.Equal(t, asset.Image, it.Kind)
	assert.Equal(t, "photos/a.png", it.Rel)
	assert.Equal(t, filepath.Join(fx.src, "photos", "a.png"), it.Source)

	data, err := os.ReadFile(fx.gallery.Path("imgs", "photos", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "data:photos/a.png", string(data))

	font, err := m.Stage("fonts/f.ttf")
	require.NoError(t, err)
	assert.Equal(t, asset.Font, font.Kind)

	unknown, err := m.Stage("notes.txt")
	require.NoError(t, err)
	assert.Nil(t, unknown)
	assert.NoFileExists(t, fx.gallery.Path("imgs", "notes.txt"))

	st := m.Stats()
	assert.Equal(t, 2, st.Copied)
	assert.Equal(t, int64(len("data:photos/a.png")+len("data:fonts/f.ttf")), st.CopiedBytes)
}

func TestStageLink(t *testing.T) {
	fx := newFixture(t, "a.png")
	t.Chdir(fx.src)

	m, err := New(fx.gallery, Options{})
	require.NoError(t, err)
	if m.Strategy() != Link {
		t.Skip("symlinks unsupported on this platform")
	}

	it, err := m.Stage("a.png")
	require.NoError(t, err)

	linkPath := fx.gallery.Path("imgs", "a.png")
	info, err := os.Lstat(linkPath)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink)

	data, err := os.ReadFile(linkPath)
	require.NoError(t, err)
	assert.Equal(t, "data:a.png", string(data), "link must resolve to the original")
	assert.Equal(t, 1, m.Stats().Linked)
	assert.Equal(t, "imgs/a.png", it.Key)
}

func TestStageLocalAndRemote(t *testing.T) {
	fx := newFixture(t, "a.png")
	t.Chdir(fx.src)

	m, err := New(fx.gallery, Options{Local: true})
	require.NoError(t, err)

	it, err := m.Stage("a.png")
	require.NoError(t, err)
	abs := filepath.Join(fx.src, "a.png")
	assert.Equal(t, LocalURL(abs), it.Key)
	assert.Equal(t, SafeRel(abs), it.Rel)
	assert.Equal(t, LocalRels(abs)[0], it.Rel)
	assert.NoFileExists(t, fx.gallery.Path("imgs", "a.png"))

	remote, err := m.Stage("https://example.com/pic.JPG")
	require.NoError(t, err)
	assert.True(t, remote.Remote)
	assert.Equal(t, "https://example.com/pic.JPG", remote.Key)
	assert.Empty(t, remote.Rel)

	dropped, err := m.Stage("https://example.com/index.html")
	require.NoError(t, err)
	assert.Nil(t, dropped)
}

func TestStageDeduplicatesAndDisambiguates(t *testing.T) {
	fx := newFixture(t, "a:b.png", "a_b.png")
	t.Chdir(fx.src)

	m, err := New(fx.gallery, Options{Copy: true})
	require.NoError(t, err)

	first, err := m.Stage("a:b.png")
	require.NoError(t, err)
	again, err := m.Stage(filepath.Join(fx.src, "a:b.png"))
	require.NoError(t, err)
	assert.Same(t, first, again, "same source must map to the same item")

	second, err := m.Stage("a_b.png")
	require.NoError(t, err)
	assert.Equal(t, "imgs/a_b.png", first.Key)
	assert.NotEqual(t, first.Key, second.Key)
	assert.Regexp(t, `^imgs/a_b~[0-9a-f]{8}\.png$`, second.Key)
	assert.FileExists(t, fx.gallery.Path(filepath.FromSlash(second.Key)))
	assert.Equal(t, 1, m.Stats().Renamed)
}

func TestStageLocalDisambiguatesThumbnailNames(t *testing.T) {
	fx := newFixture(t, "x:y.png", "x_y.png")
	t.Chdir(fx.src)

	m, err := New(fx.gallery, Options{Local: true})
	require.NoError(t, err)

	first, err := m.Stage("x:y.png")
	require.NoError(t, err)
	second, err := m.Stage("x_y.png")
	require.NoError(t, err)

	assert.NotEqual(t, first.Key, second.Key)
	assert.NotEqual(t, first.Rel, second.Rel)
	assert.Equal(t, SafeRel(filepath.Join(fx.src, "x_y.png")), first.Rel)
	assert.Equal(t, LocalRels(second.Source)[1], second.Rel)
	assert.Equal(t, 1, m.Stats().Renamed)
}

func TestReserve(t *testing.T) {
	fx := newFixture(t, "g.ttf.png")
	t.Chdir(fx.src)

	m, err := New(fx.gallery, Options{Copy: true})
	require.NoError(t, err)

	sample := m.Reserve("g.ttf.png", "sample")
	assert.Equal(t, "g.ttf.png", sample)
	assert.Equal(t, sample, m.Reserve("g.ttf.png", "sample"), "same source keeps its name")

	it, err := m.Stage("g.ttf.png")
	require.NoError(t, err)
	assert.Regexp(t, `^imgs/g\.ttf~[0-9a-f]{8}\.png$`, it.Key)
	assert.FileExists(t, fx.gallery.Path(filepath.FromSlash(it.Key)))
}

func TestStageLinkThroughSymlinkedOutput(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "src")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.png"), []byte("data:a.png"), 0o644))

	deep := filepath.Join(base, "real", "deep")
	require.NoError(t, os.MkdirAll(deep, 0o755))
	if err := os.Symlink(deep, filepath.Join(base, "out")); err != nil {
		t.Skip("symlinks unsupported on this platform")
	}

	g, err := gallery.Open(filepath.Join(base, "out", "g"))
	require.NoError(t, err)
	require.NoError(t, g.PrepareAssets(false))

	m, err := New(g, Options{})
	require.NoError(t, err)
	if m.Strategy() != Link {
		t.Skip("symlinks unsupported on this platform")
	}

	it, err := m.Stage(filepath.Join(src, "a.png"))
	require.NoError(t, err)

	data, err := os.ReadFile(g.Path(filepath.FromSlash(it.Key)))
	require.NoError(t, err)
	assert.Equal(t, "data:a.png", string(data))
}
