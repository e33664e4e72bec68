// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package host

import (
	"sync"

	"github.com/gogpu/aurora"
)

// Viewport is a settable viewport size with resize observers.
type Viewport struct {
	mu       sync.Mutex
	width    int
	height   int
	nextID   int
	handlers map[int]func(width, height int)
}

var _ aurora.Viewport = (*Viewport)(nil)

// NewViewport returns a viewport of the given size.
func NewViewport(width, height int) *Viewport {
	return &Viewport{
		width:    width,
		height:   height,
		handlers: make(map[int]func(width, height int)),
	}
}

// Size implements aurora.Viewport.
func (v *Viewport) Size() (width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.width, v.height
}

// OnResize implements aurora.Viewport.
func (v *Viewport) OnResize(fn func(width, height int)) (remove func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	id := v.nextID
	v.nextID++
	v.handlers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			v.mu.Lock()
			delete(v.handlers, id)
			v.mu.Unlock()
		})
	}
}

// SetSize changes the size and notifies observers in registration order.
// Setting the current size does nothing. Observers run on the calling
// goroutine, outside the viewport's lock.
func (v *Viewport) SetSize(width, height int) {
	v.mu.Lock()
	if v.width == width && v.height == height {
		v.mu.Unlock()
		return
	}
	v.width, v.height = width, height
	handlers := make([]func(int, int), 0, len(v.handlers))
	for id := 0; id < v.nextID; id++ {
		if fn, ok := v.handlers[id]; ok {
			handlers = append(handlers, fn)
		}
	}
	v.mu.Unlock()

	for _, fn := range handlers {
		fn(width, height)
	}
}

// Observers returns the number of registered resize observers.
func (v *Viewport) Observers() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.handlers)
}
