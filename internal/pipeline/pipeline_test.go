package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/hluk/mkgallery/internal/config"
	"github.com/hluk/mkgallery/internal/gallery"
	"github.com/hluk/mkgallery/internal/manifest"
	"github.com/hluk/mkgallery/internal/materialize"
	"github.com/hluk/mkgallery/internal/thumbnail"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func pngData(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xa0
	}
	img.Set(0, 0, color.Black)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// setup creates the sample tree, enters it and returns a configuration
// writing the gallery outside of it.
func setup(t *testing.T) config.Config {
	t.Helper()
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "a.png"), pngData(t, 200, 100))
	writeFile(t, filepath.Join(src, "b.PNG"), pngData(t, 50, 50))
	writeFile(t, filepath.Join(src, "c.jpg"), []byte("corrupt"))
	writeFile(t, filepath.Join(src, "fonts", "go.ttf"), goregular.TTF)
	writeFile(t, filepath.Join(src, "notes.txt"), []byte("not media"))
	t.Chdir(src)

	return config.Config{
		Title:         "test",
		Output:        filepath.Join(t.TempDir(), "gallery"),
		Resolution:    100,
		Workers:       2,
		ProgressWidth: 10,
		Thumbnail: config.ThumbnailConfig{
			Format:  config.FormatJPEG,
			Quality: 80,
			Backend: config.BackendImaging,
		},
		Font: config.FontConfig{Size: 16, Text: "Hi\nthere"},
	}
}

func readGallery(t *testing.T, cfg config.Config, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(cfg.Output, name))
	require.NoError(t, err)
	return string(data)
}

func TestRun(t *testing.T) {
	cfg := setup(t)

	report, err := New(cfg, Options{}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, `var title = "test";
var ls = [
["imgs/a.png",{"thumbnail_size":[100,50]}],
["imgs/b.PNG",{"thumbnail_size":[50,50]}],
"imgs/c.jpg",
["imgs/fonts/go.ttf",{"alias":"Go Regular"}],
];
`, readGallery(t, cfg, gallery.ManifestFile))
	assert.Equal(t, "@font-face{font-family:go_regular;src:url('imgs/fonts/go.ttf');}\n",
		readGallery(t, cfg, gallery.StylesheetFile))

	assert.FileExists(t, filepath.Join(cfg.Output, "thumbs", "a.png.jpg"))
	assert.FileExists(t, filepath.Join(cfg.Output, "thumbs", "b.PNG.jpg"))
	assert.FileExists(t, filepath.Join(cfg.Output, "imgs", "fonts", "go.ttf"))

	assert.Equal(t, ScanStats{Files: 5, Unknown: 1}, report.Scan)
	assert.Equal(t, thumbnail.Result{Generated: 2, Failed: 1}, report.Thumbnails)
	assert.Equal(t, manifest.Stats{Items: 4, Images: 3, Fonts: 1, Thumbnails: 2, Aliases: 1}, report.Manifest)
	assert.Equal(t, 1, report.FontRules)
	assert.Equal(t, "imaging", report.ThumbnailBackend)
}

func TestRunIsIdempotent(t *testing.T) {
	cfg := setup(t)

	_, err := New(cfg, Options{}).Run(context.Background())
	require.NoError(t, err)
	first := readGallery(t, cfg, gallery.ManifestFile)

	_, err = New(cfg, Options{}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, readGallery(t, cfg, gallery.ManifestFile))
}

// snooper records items.js as it is when the first thumbnail is made.
type snooper struct {
	thumbnail.Imaging
	manifest string
	once     sync.Once
	early    []byte
}

func (s *snooper) Fit(path string, box int) (image.Image, error) {
	s.once.Do(func() {
		s.early, _ = os.ReadFile(s.manifest)
	})
	return s.Imaging.Fit(path, box)
}

func TestEarlyWriteMatchesRunWithoutThumbnails(t *testing.T) {
	cfg := setup(t)

	spy := &snooper{manifest: filepath.Join(cfg.Output, gallery.ManifestFile)}
	_, err := New(cfg, Options{ThumbnailBackend: spy}).Run(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, spy.early)
	assert.NotContains(t, string(spy.early), "thumbnail_size")

	cfg.Resolution = 0
	report, err := New(cfg, Options{}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, string(spy.early), readGallery(t, cfg, gallery.ManifestFile))
	assert.NoDirExists(t, filepath.Join(cfg.Output, gallery.ThumbDir))
	assert.Zero(t, report.Thumbnails)
}

func TestRunRenderFonts(t *testing.T) {
	cfg := setup(t)
	cfg.Font.Render = true

	report, err := New(cfg, Options{}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.FontsRendered)

	js := readGallery(t, cfg, gallery.ManifestFile)
	assert.Contains(t, js, `["imgs/fonts/go.ttf.png",{"alias":"Go Regular","link":"imgs/fonts/go.ttf","thumbnail_size":[`)
	d, err := manifest.Parse([]byte(js))
	require.NoError(t, err)
	assert.Nil(t, d.Get("imgs/fonts/go.ttf"), "rendered fonts are listed through their sample")
	assert.Empty(t, readGallery(t, cfg, gallery.StylesheetFile))
	assert.FileExists(t, filepath.Join(cfg.Output, "thumbs", "fonts", "go.ttf.png.jpg"))
}

func TestRunLocalMode(t *testing.T) {
	cfg := setup(t)
	cfg.Local = true
	cfg.Resolution = 0

	_, err := New(cfg, Options{Inputs: []string{"a.png", "https://example.com/x.webm"}}).Run(context.Background())
	require.NoError(t, err)

	wd, err := os.Getwd()
	require.NoError(t, err)
	want := "var title = \"test\";\nvar ls = [\n" +
		`"` + materialize.LocalURL(filepath.Join(wd, "a.png")) + "\",\n" +
		"\"https://example.com/x.webm\",\n];\n"
	// file:// sorts before https://
	assert.Equal(t, want, readGallery(t, cfg, gallery.ManifestFile))
	assert.NoFileExists(t, filepath.Join(cfg.Output, "imgs", "a.png"))
}

func TestRunNoItems(t *testing.T) {
	cfg := setup(t)

	_, err := New(cfg, Options{Inputs: []string{"notes.txt"}}).Run(context.Background())
	require.ErrorIs(t, err, ErrNoItems)
	assert.NoFileExists(t, filepath.Join(cfg.Output, gallery.ManifestFile))
}

func TestRunMissingInput(t *testing.T) {
	cfg := setup(t)

	_, err := New(cfg, Options{Inputs: []string{"a.png", "missing"}}).Run(context.Background())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "cannot read input"))
	assert.NoFileExists(t, filepath.Join(cfg.Output, gallery.ManifestFile))
}

func TestRunUnreadableInputDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	cfg := setup(t)
	require.NoError(t, os.Chmod("fonts", 0))
	t.Cleanup(func() { _ = os.Chmod("fonts", 0o755) })

	_, err := New(cfg, Options{Inputs: []string{"a.png", "fonts"}}).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot read input")
	assert.NoFileExists(t, filepath.Join(cfg.Output, gallery.ManifestFile))
}

func TestRunRenderedSampleDoesNotShadowImage(t *testing.T) {
	cfg := setup(t)
	cfg.Font.Render = true
	writeFile(t, "g.ttf", goregular.TTF)
	writeFile(t, "g.ttf.png", pngData(t, 30, 20))

	report, err := New(cfg, Options{Inputs: []string{"g.ttf", "g.ttf.png"}}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.FontsRendered)
	assert.Equal(t, 1, report.Staging.Renamed)

	d, err := manifest.Parse([]byte(readGallery(t, cfg, gallery.ManifestFile)))
	require.NoError(t, err)
	require.Len(t, d.Keys, 2)

	sample := d.Get("imgs/g.ttf.png")
	require.NotNil(t, sample, "sample claims its name first")
	assert.Equal(t, "imgs/g.ttf", sample.Link)

	photo := d.Get(d.Keys[1])
	require.NotNil(t, photo)
	assert.Regexp(t, `^imgs/g\.ttf~[0-9a-f]{8}\.png$`, photo.Key)
	assert.Empty(t, photo.Link)
	data, err := os.ReadFile(filepath.Join(cfg.Output, filepath.FromSlash(photo.Key)))
	require.NoError(t, err)
	assert.Equal(t, pngData(t, 30, 20), data)
}

func TestRunRefusesForeignAssets(t *testing.T) {
	cfg := setup(t)
	writeFile(t, filepath.Join(cfg.Output, "imgs", "precious.jpg"), []byte("user data"))

	_, err := New(cfg, Options{}).Run(context.Background())
	require.ErrorIs(t, err, gallery.ErrNotOwned)
	assert.FileExists(t, filepath.Join(cfg.Output, "imgs", "precious.jpg"))

	cfg.Force = true
	_, err = New(cfg, Options{}).Run(context.Background())
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(cfg.Output, "imgs", "precious.jpg"))
}

func TestRunExcludesOwnOutput(t *testing.T) {
	cfg := setup(t)
	// Gallery inside the input tree.
	cfg.Output = filepath.Join(".", "gallery")

	_, err := New(cfg, Options{}).Run(context.Background())
	require.NoError(t, err)
	first := readGallery(t, cfg, gallery.ManifestFile)

	_, err = New(cfg, Options{}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, readGallery(t, cfg, gallery.ManifestFile))
	assert.NotContains(t, first, "thumbs/")
	assert.NotContains(t, first, "imgs/gallery")
}
