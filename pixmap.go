package aurora

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
)

// Pixmap is a rectangular buffer of premultiplied RGBA pixels, row-major
// with row 0 at the top.
type Pixmap struct {
	width  int
	height int
	data   []uint8 // premultiplied RGBA, 4 bytes per pixel
}

// NewPixmap creates a new transparent pixmap with the given dimensions.
func NewPixmap(width, height int) *Pixmap {
	return &Pixmap{
		width:  width,
		height: height,
		data:   make([]uint8, width*height*4),
	}
}

// Width returns the width of the pixmap.
func (p *Pixmap) Width() int {
	return p.width
}

// Height returns the height of the pixmap.
func (p *Pixmap) Height() int {
	return p.height
}

// Data returns the raw pixel data (premultiplied RGBA).
func (p *Pixmap) Data() []uint8 {
	return p.data
}

// Resize reallocates the pixmap to the given dimensions and clears it.
func (p *Pixmap) Resize(width, height int) {
	p.width = width
	p.height = height
	if n := width * height * 4; cap(p.data) >= n {
		p.data = p.data[:n]
		clear(p.data)
	} else {
		p.data = make([]uint8, n)
	}
}

// Clear makes every pixel transparent.
func (p *Pixmap) Clear() {
	clear(p.data)
}

// Pixel returns the premultiplied color of a single pixel. Out of bounds
// coordinates return transparent.
func (p *Pixmap) Pixel(x, y int) color.RGBA {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return color.RGBA{}
	}
	i := (y*p.width + x) * 4
	return color.RGBA{R: p.data[i], G: p.data[i+1], B: p.data[i+2], A: p.data[i+3]}
}

// PixelAtUV returns the pixel covering normalized viewport coordinates
// (u, v), with v = 0 at the bottom edge as in the fragment program.
func (p *Pixmap) PixelAtUV(u, v float64) color.RGBA {
	x := int(u * float64(p.width))
	y := p.height - 1 - int(v*float64(p.height))
	x = min(max(x, 0), p.width-1)
	y = min(max(y, 0), p.height-1)
	return p.Pixel(x, y)
}

// CopyFrom copies src into p, resizing p if needed.
func (p *Pixmap) CopyFrom(src *Pixmap) {
	if p.width != src.width || p.height != src.height {
		p.Resize(src.width, src.height)
	}
	copy(p.data, src.data)
}

// Clone returns a deep copy of p.
func (p *Pixmap) Clone() *Pixmap {
	c := NewPixmap(p.width, p.height)
	copy(c.data, p.data)
	return c
}

// Equal reports whether p and o have identical dimensions and pixels.
func (p *Pixmap) Equal(o *Pixmap) bool {
	if p.width != o.width || p.height != o.height {
		return false
	}
	for i := range p.data {
		if p.data[i] != o.data[i] {
			return false
		}
	}
	return true
}

// ToImage converts the pixmap to an image.RGBA. image.RGBA is
// alpha-premultiplied, so pixels are copied as is.
func (p *Pixmap) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, p.width, p.height))
	copy(img.Pix, p.data)
	return img
}

// SavePNG saves the pixmap to a PNG file.
func (p *Pixmap) SavePNG(path string) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	if err := png.Encode(f, p.ToImage()); err != nil {
		_ = f.Close()
		return fmt.Errorf("aurora: encode %s: %w", path, err)
	}
	return f.Close()
}

// At implements the image.Image interface.
func (p *Pixmap) At(x, y int) color.Color {
	return p.Pixel(x, y)
}

// Bounds implements the image.Image interface.
func (p *Pixmap) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.width, p.height)
}

// ColorModel implements the image.Image interface.
func (p *Pixmap) ColorModel() color.Model {
	return color.RGBAModel
}
