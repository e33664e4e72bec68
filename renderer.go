package aurora

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Renderer paints the animated aurora into a host container.
//
// A Renderer is created once with the viewport it tracks and the frame
// scheduler that drives it, then mounted into a container. While mounted it
// redraws on every scheduled frame until Unmount is called or the drawing
// context is lost.
//
// A backend the renderer resolved itself (DefaultBackend or
// WithBackendName) is owned by the renderer: Unmount closes it and the next
// Mount resolves a fresh one. A backend passed with WithBackend stays owned
// by the caller.
//
// All methods are safe for concurrent use. Frame callbacks, viewport
// resizes, SetParameters and Unmount are serialised by one lock, so a frame
// never observes a half-applied update or a torn-down surface.
type Renderer struct {
	id        string
	label     string
	viewport  Viewport
	scheduler FrameScheduler
	resolve   func() Backend // nil when the caller owns the backend
	log       *slog.Logger

	mu            sync.Mutex
	backend       Backend
	backendClosed bool
	container     Container
	surface      Surface
	removeResize func()
	frameID      FrameID
	running      bool
	params       Parameters
	uniforms     Uniforms
	origin       time.Duration
	started      bool
	frames       uint64
	err          error
}

// NewRenderer creates an unmounted renderer sized by viewport and driven by
// scheduler. Without WithBackend the renderer uses DefaultBackend.
func NewRenderer(viewport Viewport, scheduler FrameScheduler, opts ...Option) *Renderer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	id := uuid.NewString()
	label := o.label
	if label == "" {
		label = "aurora-" + id[:8]
	}
	backend, resolve := o.backend, o.resolve
	if backend == nil {
		if resolve == nil {
			resolve = DefaultBackend
		}
		backend = resolve()
	} else {
		resolve = nil
	}

	return &Renderer{
		id:        id,
		label:     label,
		viewport:  viewport,
		scheduler: scheduler,
		resolve:   resolve,
		backend:   backend,
		log:       Logger().With("renderer", id),
		params:    DefaultParameters(),
	}
}

// ID returns the renderer's unique id.
func (r *Renderer) ID() string { return r.id }

// Label returns the debug label used for surface resources.
func (r *Renderer) Label() string { return r.label }

// Backend returns the backend that creates the renderer's surfaces.
func (r *Renderer) Backend() Backend {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.backend
}

// Mount acquires a drawing context sized to the viewport, attaches it to c
// and starts the render loop with initial parameters p.
//
// Every acquisition failure is returned as an *InitError matching
// ErrRenderInitialization, and leaves nothing attached or allocated.
// Mounting a mounted renderer returns ErrAlreadyMounted.
func (r *Renderer) Mount(c Container, p Parameters) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.surface != nil {
		return ErrAlreadyMounted
	}
	if c == nil {
		return initError(StageAttach, errors.New("nil container"))
	}
	if err := p.Validate(); err != nil {
		return initError(StageParameters, err)
	}
	if r.backendClosed {
		r.backend = r.resolve()
		r.backendClosed = false
	}

	w, h := r.viewport.Size()
	s, err := r.backend.NewSurface(SurfaceConfig{Width: w, Height: h, Label: r.label})
	if err != nil {
		return initError(StageContext, err)
	}
	if err := c.Attach(s); err != nil {
		if rerr := s.Release(); rerr != nil {
			r.log.Warn("release after failed attach", "err", rerr)
		}
		return initError(StageAttach, err)
	}

	r.container = c
	r.surface = s
	r.params = p
	r.uniforms = Uniforms{}
	r.uniforms.SetParameters(p)
	r.uniforms.SetResolution(w, h)
	r.started = false
	r.frames = 0
	r.err = nil

	r.running = true
	r.frameID = r.scheduler.RequestFrame(r.frame)
	r.removeResize = r.viewport.OnResize(r.handleResize)
	// A resize between Size and OnResize reached no observer.
	if nw, nh := r.viewport.Size(); nw != w || nh != h {
		r.resizeLocked(nw, nh)
		w, h = nw, nh
	}

	r.log.Info("mounted", "backend", r.backend.Name(), "width", w, "height", h)
	return nil
}

// frame draws one frame and schedules the next. The first frame after Mount
// fixes the time origin.
func (r *Renderer) frame(ts time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.surface == nil || !r.running {
		return
	}
	r.frameID = r.scheduler.RequestFrame(r.frame)

	if !r.started {
		r.origin = ts
		r.started = true
	}
	r.uniforms.Time = float32((ts - r.origin).Seconds() * r.params.Speed)

	if err := r.surface.Draw(&r.uniforms); err != nil {
		r.stopLocked()
		if !errors.Is(err, ErrContextLost) {
			err = fmt.Errorf("aurora: draw frame: %w", err)
		}
		r.err = err
		r.log.Warn("render loop stopped", "frames", r.frames, "err", err)
		return
	}
	r.frames++
}

// stopLocked cancels the pending frame. The caller holds r.mu.
func (r *Renderer) stopLocked() {
	r.running = false
	if r.frameID != 0 {
		r.scheduler.CancelFrame(r.frameID)
		r.frameID = 0
	}
}

// handleResize resizes the surface and the resolution uniform to the new
// viewport size.
func (r *Renderer) handleResize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resizeLocked(width, height)
}

// resizeLocked applies a viewport size. The caller holds r.mu.
func (r *Renderer) resizeLocked(width, height int) {
	if r.surface == nil {
		return
	}
	if err := r.surface.Resize(width, height); err != nil {
		r.log.Warn("resize failed", "width", width, "height", height, "err", err)
		return
	}
	r.uniforms.SetResolution(width, height)
	r.log.Debug("resized", "width", width, "height", height)
}

// SetParameters applies updates to the mounted renderer. The next frame
// uses the new values. Updates are all-or-nothing: if the result fails
// validation nothing changes and the validation error is returned.
//
// Before Mount, and after Unmount, SetParameters returns ErrNotMounted.
func (r *Renderer) SetParameters(updates ...ParameterUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.surface == nil {
		return ErrNotMounted
	}
	next := r.params.Apply(updates...)
	if err := next.Validate(); err != nil {
		return err
	}
	r.params = next
	r.uniforms.SetParameters(next)
	return nil
}

// Unmount stops the render loop, stops tracking viewport size, detaches the
// surface from the container and releases the drawing context. An owned
// backend is closed as well.
//
// Unmount is idempotent and safe to call after a failed Mount. It returns
// the errors from releasing the surface and closing the backend, if any.
func (r *Renderer) Unmount() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.surface == nil {
		return r.closeBackendLocked()
	}
	r.stopLocked()
	if r.removeResize != nil {
		r.removeResize()
		r.removeResize = nil
	}
	if r.container.Contains(r.surface) {
		r.container.Detach(r.surface)
	}
	err := r.surface.Release()
	r.surface = nil
	r.container = nil
	if err != nil {
		err = fmt.Errorf("aurora: release surface: %w", err)
	}

	r.log.Info("unmounted", "frames", r.frames)
	return errors.Join(err, r.closeBackendLocked())
}

// closeBackendLocked closes an owned backend once. The caller holds r.mu.
func (r *Renderer) closeBackendLocked() error {
	if r.resolve == nil || r.backendClosed {
		return nil
	}
	r.backendClosed = true
	c, ok := r.backend.(io.Closer)
	if !ok {
		return nil
	}
	if err := c.Close(); err != nil {
		return fmt.Errorf("aurora: close %s backend: %w", r.backend.Name(), err)
	}
	r.log.Debug("backend closed", "backend", r.backend.Name())
	return nil
}

// Mounted reports whether the renderer holds a surface.
func (r *Renderer) Mounted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.surface != nil
}

// Running reports whether the render loop is scheduling frames.
func (r *Renderer) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Err returns the error that stopped the render loop, or nil.
// It is reset by Mount.
func (r *Renderer) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Frames returns the number of frames drawn since Mount.
func (r *Renderer) Frames() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Parameters returns the current parameters.
func (r *Renderer) Parameters() Parameters {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.params
}

// Uniforms returns a copy of the values the next frame will draw with,
// apart from Time which holds the last drawn frame's time.
func (r *Renderer) Uniforms() Uniforms {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.uniforms
}

// Surface returns the mounted surface, or nil.
func (r *Renderer) Surface() Surface {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.surface
}

// Snapshot copies the last drawn frame into dst, resizing dst to the surface
// size. The surface must implement PixelReader.
func (r *Renderer) Snapshot(dst *Pixmap) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.surface == nil {
		return ErrNotMounted
	}
	pr, ok := r.surface.(PixelReader)
	if !ok {
		return fmt.Errorf("aurora: %s surface does not support pixel readback", r.backend.Name())
	}
	return pr.ReadPixels(dst)
}
