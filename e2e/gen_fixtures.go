//go:build ignore

// gen_fixtures creates a small media tree for trying out mkgallery by hand.
// Usage: go run gen_fixtures.go <output_dir>
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gen_fixtures <output_dir>")
		os.Exit(1)
	}
	dir := os.Args[1]
	for _, sub := range []string{"photos/cards", "fonts", "clips"} {
		os.MkdirAll(filepath.Join(dir, sub), 0o755)
	}

	// Banner (JPEG, 400x225)
	writeJPEG(filepath.Join(dir, "photos", "banner.jpg"), gradient(400, 225, false))

	// Cards (PNG, growing widths)
	for i := 1; i <= 3; i++ {
		name := fmt.Sprintf("card-%d.png", i)
		writePNG(filepath.Join(dir, "photos", "cards", name), gradient(150*i, 150, false))
	}

	// Small alpha image, upper case to check ordering
	writePNG(filepath.Join(dir, "Logo.png"), gradient(100, 100, true))

	// Fonts
	os.WriteFile(filepath.Join(dir, "fonts", "go-regular.ttf"), goregular.TTF, 0o644)
	os.WriteFile(filepath.Join(dir, "fonts", "go-bold.ttf"), gobold.TTF, 0o644)

	// Listed but never decoded
	os.WriteFile(filepath.Join(dir, "clips", "intro.webm"), nil, 0o644)
	// Corrupt image, reported and skipped
	os.WriteFile(filepath.Join(dir, "photos", "broken.jpg"), []byte("not a jpeg"), 0o644)
	// Ignored
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not media\n"), 0o644)
	// Directory cycle
	os.Symlink("..", filepath.Join(dir, "photos", "up"))

	fmt.Fprintf(os.Stderr, "[gen_fixtures] created 11 fixtures in %s\n", dir)
}

// gradient fills w x h with a colour ramp. With fade, alpha falls off
// from left to right, which exercises flattening onto white.
func gradient(w, h int, fade bool) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 128, A: 255}
			if fade {
				c.A = uint8(255 - x*255/w)
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func save(path string, encode func(*os.File) error) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	if err := encode(f); err != nil {
		panic(err)
	}
}

func writePNG(path string, img image.Image) {
	save(path, func(f *os.File) error { return png.Encode(f, img) })
}

func writeJPEG(path string, img image.Image) {
	save(path, func(f *os.File) error { return jpeg.Encode(f, img, &jpeg.Options{Quality: 85}) })
}
