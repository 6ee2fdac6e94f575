package font

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"strings"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// SFNT is the pure Go backend for TrueType and OpenType fonts.
type SFNT struct{}

func (SFNT) Name() string    { return "sfnt" }
func (SFNT) Available() bool { return true }

func (SFNT) Describe(data []byte) (string, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return "", fmt.Errorf("parse font: %w", err)
	}

	var buf sfnt.Buffer
	family, err := f.Name(&buf, sfnt.NameIDFamily)
	if err != nil {
		return "", fmt.Errorf("read family name: %w", err)
	}
	// Fonts without a subfamily entry are still usable.
	sub, _ := f.Name(&buf, sfnt.NameIDSubfamily)

	name := strings.TrimSpace(strings.Join([]string{family, sub}, " "))
	if name == "" {
		return "", errors.New("font has no family name")
	}
	return name, nil
}

type line struct {
	text   string
	bounds fixed.Rectangle26_6
	width  int
	height int
}

// Render lays out every line in its own tight bounding box and stacks the
// boxes top to bottom. Empty lines take half of size.
func (SFNT) Render(data []byte, size int, text string) (image.Image, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid font size %d", size)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: xfont.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}
	defer face.Close()

	var (
		lines         []line
		width, height int
	)
	for _, s := range strings.Split(text, "\n") {
		l := line{text: s, height: size / 2}
		if b, _ := xfont.BoundString(face, s); !b.Empty() {
			l.bounds = b
			l.width = (b.Max.X - b.Min.X).Ceil()
			l.height = (b.Max.Y - b.Min.Y).Ceil()
		}
		lines = append(lines, l)
		width = max(width, l.width)
		height += l.height
	}
	if width == 0 || height == 0 {
		return nil, errors.New("sample text renders no glyphs")
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	d := &xfont.Drawer{Dst: canvas, Src: image.Black, Face: face}
	y := 0
	for _, l := range lines {
		if l.width > 0 {
			d.Dot = fixed.Point26_6{
				X: -l.bounds.Min.X,
				Y: fixed.I(y) - l.bounds.Min.Y,
			}
			d.DrawString(l.text)
		}
		y += l.height
	}
	return canvas, nil
}
