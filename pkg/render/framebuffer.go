// Package render casts rays through a scene and quantizes the shaded
// result into an RGBA framebuffer.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"slices"
)

// Framebuffer is a row-major grid of 8-bit RGBA pixels.
type Framebuffer struct {
	Width  int
	Height int
	Pixels []color.RGBA
}

// NewFramebuffer creates a new framebuffer with the given dimensions. All
// pixels start as transparent black.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]color.RGBA, width*height),
	}
}

// GetPixel returns the color at (x, y).
// Returns transparent black if out of bounds.
func (fb *Framebuffer) GetPixel(x, y int) color.RGBA {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return color.RGBA{}
	}
	return fb.Pixels[y*fb.Width+x]
}

// Row returns the pixels of row y. The slice aliases the framebuffer.
func (fb *Framebuffer) Row(y int) []color.RGBA {
	return fb.Pixels[y*fb.Width : (y+1)*fb.Width]
}

// Equal reports whether both framebuffers have the same size and pixels.
func (fb *Framebuffer) Equal(other *Framebuffer) bool {
	return fb.Width == other.Width && fb.Height == other.Height &&
		slices.Equal(fb.Pixels, other.Pixels)
}

// ToImage converts the framebuffer to a standard Go image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			img.SetRGBA(x, y, fb.Pixels[y*fb.Width+x])
		}
	}
	return img
}

// SavePNG saves the framebuffer as a PNG file.
func (fb *Framebuffer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, fb.ToImage()); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}
