package aurora

import (
	"errors"
	"fmt"
)

// Common errors returned by Renderer and Surface operations.
var (
	// ErrRenderInitialization is matched by every error returned from a
	// failed Mount: the drawing context, the shader program or the surface
	// could not be created. Use errors.As with *InitError for the stage.
	ErrRenderInitialization = errors.New("aurora: render initialization failed")

	// ErrContextLost is returned by Surface.Draw once the underlying
	// drawing context has been lost. The render loop stops and is not
	// restarted; remount to recover.
	ErrContextLost = errors.New("aurora: drawing context lost")

	// ErrInvalidColorStops is returned when a color stop list does not
	// contain exactly three valid colors.
	ErrInvalidColorStops = errors.New("aurora: invalid color stops")

	// ErrInvalidDimensions is returned when a surface is sized to a
	// non-positive width or height.
	ErrInvalidDimensions = errors.New("aurora: invalid dimensions")

	// ErrNotMounted is returned by operations that require a mounted renderer.
	ErrNotMounted = errors.New("aurora: renderer is not mounted")

	// ErrAlreadyMounted is returned by Mount when the renderer is mounted.
	ErrAlreadyMounted = errors.New("aurora: renderer is already mounted")

	// ErrSurfaceReleased is returned by Surface methods after Release.
	ErrSurfaceReleased = errors.New("aurora: surface released")

	// ErrUnknownBackend is returned when a backend name is not registered.
	ErrUnknownBackend = errors.New("aurora: unknown backend")
)

// InitStage names the step of Mount that failed.
type InitStage string

// Mount stages in acquisition order.
const (
	StageParameters InitStage = "parameters"
	StageContext    InitStage = "context"
	StageProgram    InitStage = "program"
	StageSurface    InitStage = "surface"
	StageAttach     InitStage = "attach"
)

// InitError describes a failed Mount. It matches ErrRenderInitialization
// with errors.Is and unwraps to the underlying cause.
type InitError struct {
	Stage InitStage
	Err   error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("aurora: render initialization failed at %s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying cause.
func (e *InitError) Unwrap() error { return e.Err }

// Is reports whether target is ErrRenderInitialization.
func (e *InitError) Is(target error) bool { return target == ErrRenderInitialization }

// initError wraps err as an *InitError for stage unless it already is one.
func initError(stage InitStage, err error) error {
	var ie *InitError
	if errors.As(err, &ie) {
		return err
	}
	return &InitError{Stage: stage, Err: err}
}
