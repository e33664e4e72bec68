package aurora

// SurfaceConfig describes a surface to create.
type SurfaceConfig struct {
	// Width and Height are the initial size in device pixels.
	Width  int
	Height int

	// Label prefixes debug labels of backend resources.
	Label string
}

// Backend creates drawing surfaces. Each surface owns its own drawing
// context, compiled aurora program and full-screen triangle.
type Backend interface {
	// Name returns the registry name of the backend.
	Name() string

	// NewSurface acquires a drawing context configured for premultiplied
	// alpha blending and builds the aurora program on it. On error no
	// resources remain allocated.
	NewSurface(cfg SurfaceConfig) (Surface, error)
}

// Surface is a drawing context bound to one mounted Renderer.
//
// Surface is NOT safe for concurrent use; the Renderer serialises calls.
type Surface interface {
	// Size returns the current size in device pixels.
	Size() (width, height int)

	// Resize changes the physical size of the surface.
	Resize(width, height int) error

	// Draw clears the surface to transparent and paints one frame with u.
	// It returns ErrContextLost once the context is gone.
	Draw(u *Uniforms) error

	// Release frees the context and every resource built on it.
	// Release is idempotent.
	Release() error
}

// PixelReader is implemented by surfaces that can copy their last frame
// back to memory.
type PixelReader interface {
	ReadPixels(dst *Pixmap) error
}

// ContextLoser is implemented by surfaces that can simulate losing their
// context, like WEBGL_lose_context.
type ContextLoser interface {
	Lose()
}
