package aurora

import "time"

// Container is the host element a mounted renderer attaches its surface to.
type Container interface {
	// Attach makes s a child of the container.
	Attach(s Surface) error

	// Detach removes s from the container. Detaching a surface that is
	// not attached is a no-op.
	Detach(s Surface)

	// Contains reports whether s is currently attached.
	Contains(s Surface) bool
}

// Viewport reports the size of the visible area and notifies on changes.
type Viewport interface {
	// Size returns the current size in device pixels.
	Size() (width, height int)

	// OnResize registers fn to be called with the new size after every
	// change. The returned function removes the registration.
	// Implementations must not call fn from inside OnResize.
	OnResize(fn func(width, height int)) (remove func())
}

// FrameID identifies a pending frame request. Zero is never a valid id.
type FrameID uint64

// FrameCallback receives a monotonically increasing frame timestamp.
type FrameCallback func(timestamp time.Duration)

// FrameScheduler invokes callbacks roughly once per display refresh.
type FrameScheduler interface {
	// RequestFrame schedules cb for the next frame and returns its id.
	RequestFrame(cb FrameCallback) FrameID

	// CancelFrame cancels a pending request. Cancelling an id that already
	// fired or was never issued is a no-op. CancelFrame must not wait for a
	// callback that is currently running.
	CancelFrame(id FrameID)
}
