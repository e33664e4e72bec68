package aurora

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestPixmapPixel(t *testing.T) {
	pm := NewPixmap(4, 3)
	i := (2*4 + 1) * 4
	copy(pm.Data()[i:], []uint8{10, 20, 30, 40})

	if got := pm.Pixel(1, 2); got != (color.RGBA{10, 20, 30, 40}) {
		t.Errorf("Pixel(1, 2) = %v", got)
	}
	for _, c := range []struct{ x, y int }{{-1, 0}, {4, 0}, {0, 3}, {0, -1}} {
		if got := pm.Pixel(c.x, c.y); got != (color.RGBA{}) {
			t.Errorf("Pixel(%d, %d) = %v, want transparent", c.x, c.y, got)
		}
	}
}

// TestPixmapPixelAtUV verifies v = 0 addresses the bottom row.
func TestPixmapPixelAtUV(t *testing.T) {
	pm := NewPixmap(2, 2)
	copy(pm.Data()[(1*2+0)*4:], []uint8{1, 1, 1, 255}) // bottom-left
	copy(pm.Data()[(0*2+1)*4:], []uint8{2, 2, 2, 255}) // top-right

	if got := pm.PixelAtUV(0, 0); got.R != 1 {
		t.Errorf("PixelAtUV(0, 0) = %v, want bottom-left", got)
	}
	if got := pm.PixelAtUV(1, 1); got.R != 2 {
		t.Errorf("PixelAtUV(1, 1) = %v, want top-right", got)
	}
}

func TestPixmapResizeClears(t *testing.T) {
	pm := NewPixmap(2, 2)
	pm.Data()[0] = 255
	pm.Resize(1, 1)
	if pm.Width() != 1 || pm.Height() != 1 || len(pm.Data()) != 4 {
		t.Fatalf("Resize(1, 1): %dx%d, %d bytes", pm.Width(), pm.Height(), len(pm.Data()))
	}
	if pm.Data()[0] != 0 {
		t.Error("Resize did not clear")
	}
	pm.Resize(3, 3)
	if len(pm.Data()) != 36 {
		t.Errorf("Resize(3, 3): %d bytes, want 36", len(pm.Data()))
	}
}

func TestPixmapCopyCloneEqual(t *testing.T) {
	src := NewPixmap(3, 2)
	for i := range src.Data() {
		src.Data()[i] = uint8(i)
	}
	dst := NewPixmap(1, 1)
	dst.CopyFrom(src)
	if !dst.Equal(src) {
		t.Error("CopyFrom result differs from source")
	}

	c := src.Clone()
	c.Data()[0] = 99
	if src.Data()[0] == 99 {
		t.Error("Clone shares pixel storage")
	}
	if c.Equal(src) {
		t.Error("Equal ignored a changed pixel")
	}
	if NewPixmap(3, 2).Equal(NewPixmap(2, 3)) {
		t.Error("Equal ignored dimensions")
	}
}

func TestPixmapSavePNG(t *testing.T) {
	pm := NewPixmap(3, 3)
	copy(pm.Data()[4:], []uint8{128, 0, 0, 128})
	path := filepath.Join(t.TempDir(), "out.png")
	if err := pm.SavePNG(path); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 3 || b.Dy() != 3 {
		t.Errorf("decoded bounds = %v", b)
	}
	_, _, _, a := img.At(1, 0).RGBA()
	if a>>8 != 128 {
		t.Errorf("decoded alpha = %d, want 128", a>>8)
	}
}
