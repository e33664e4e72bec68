package aurora

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/aurora/internal/blend"
	"github.com/gogpu/aurora/internal/parallel"
)

// SoftwareBackend evaluates the aurora program on the CPU into a Pixmap.
// It is always available and is the fallback when no GPU is present.
type SoftwareBackend struct {
	// Workers is the number of goroutines shading rows.
	// Zero or negative uses GOMAXPROCS.
	Workers int
}

// NewSoftwareBackend returns a software backend using GOMAXPROCS workers.
func NewSoftwareBackend() *SoftwareBackend {
	return &SoftwareBackend{}
}

// Name implements Backend.
func (b *SoftwareBackend) Name() string { return BackendSoftware }

// NewSurface implements Backend.
func (b *SoftwareBackend) NewSurface(cfg SurfaceConfig) (Surface, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, cfg.Width, cfg.Height)
	}
	s := &SoftwareSurface{
		label:  cfg.Label,
		pixmap: NewPixmap(cfg.Width, cfg.Height),
		pool:   parallel.NewWorkerPool(b.Workers),
		blend:  blend.Premultiplied,
	}
	Logger().Debug("software surface created",
		"label", cfg.Label, "width", cfg.Width, "height", cfg.Height, "workers", s.pool.Workers())
	return s, nil
}

// SoftwareSurface is a CPU drawing surface backed by a Pixmap.
type SoftwareSurface struct {
	label    string
	pixmap   *Pixmap
	pool     *parallel.WorkerPool
	blend    blend.State
	frames   uint64
	lost     bool
	released bool
}

var (
	_ Surface      = (*SoftwareSurface)(nil)
	_ PixelReader  = (*SoftwareSurface)(nil)
	_ ContextLoser = (*SoftwareSurface)(nil)
)

// Size implements Surface.
func (s *SoftwareSurface) Size() (width, height int) {
	if s.pixmap == nil {
		return 0, 0
	}
	return s.pixmap.Width(), s.pixmap.Height()
}

// Resize implements Surface. Resizing to the current size is a no-op.
func (s *SoftwareSurface) Resize(width, height int) error {
	if s.released {
		return ErrSurfaceReleased
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, width, height)
	}
	if s.pixmap.Width() == width && s.pixmap.Height() == height {
		return nil
	}
	s.pixmap.Resize(width, height)
	return nil
}

// Draw implements Surface. Rows are shaded in parallel; each pixel is
// evaluated at its center with a bottom-left origin and composited over the
// cleared target with premultiplied source-over.
func (s *SoftwareSurface) Draw(u *Uniforms) error {
	if s.released {
		return ErrSurfaceReleased
	}
	if s.lost {
		return ErrContextLost
	}

	uniforms := *u
	w, h := s.pixmap.Width(), s.pixmap.Height()
	data := s.pixmap.Data()
	s.pixmap.Clear()

	s.pool.Rows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			row := data[y*w*4 : (y+1)*w*4]
			for x := 0; x < w; x++ {
				c := Shade(fragCenter(x, y, h), &uniforms)
				r, g, b, a := quantizePremultiplied(c)
				s.blend.Apply(row[x*4:x*4+4], r, g, b, a)
			}
		}
	})
	s.frames++
	return nil
}

// fragCenter returns the center of pixmap pixel (x, y) in framebuffer
// coordinates with a bottom-left origin.
func fragCenter(x, y, height int) mgl32.Vec2 {
	return mgl32.Vec2{float32(x) + 0.5, float32(height-1-y) + 0.5}
}

// quantizePremultiplied converts a shaded color to bytes, keeping each color
// channel at or below alpha.
func quantizePremultiplied(c mgl32.Vec4) (r, g, b, a byte) {
	a = blend.Quantize(c[3])
	r = min(blend.Quantize(c[0]), a)
	g = min(blend.Quantize(c[1]), a)
	b = min(blend.Quantize(c[2]), a)
	return r, g, b, a
}

// ReadPixels implements PixelReader.
func (s *SoftwareSurface) ReadPixels(dst *Pixmap) error {
	if s.released {
		return ErrSurfaceReleased
	}
	dst.CopyFrom(s.pixmap)
	return nil
}

// Pixmap returns the surface's pixel buffer. It is nil after Release.
func (s *SoftwareSurface) Pixmap() *Pixmap {
	return s.pixmap
}

// Frames returns the number of frames drawn.
func (s *SoftwareSurface) Frames() uint64 {
	return s.frames
}

// Lose simulates losing the drawing context. Subsequent draws return
// ErrContextLost.
func (s *SoftwareSurface) Lose() {
	s.lost = true
}

// Released reports whether Release has been called.
func (s *SoftwareSurface) Released() bool {
	return s.released
}

// Release implements Surface.
func (s *SoftwareSurface) Release() error {
	if s.released {
		return nil
	}
	s.released = true
	s.pool.Close()
	s.pool = nil
	s.pixmap = nil
	Logger().Debug("software surface released", "label", s.label, "frames", s.frames)
	return nil
}
