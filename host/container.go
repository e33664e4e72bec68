// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package host

import (
	"slices"
	"sync"

	"github.com/gogpu/aurora"
)

// Container records the surfaces attached to it.
type Container struct {
	mu       sync.Mutex
	surfaces []aurora.Surface
	failWith error
}

var _ aurora.Container = (*Container)(nil)

// NewContainer returns an empty container.
func NewContainer() *Container {
	return &Container{}
}

// Attach implements aurora.Container.
func (c *Container) Attach(s aurora.Surface) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWith != nil {
		return c.failWith
	}
	if !slices.Contains(c.surfaces, s) {
		c.surfaces = append(c.surfaces, s)
	}
	return nil
}

// Detach implements aurora.Container.
func (c *Container) Detach(s aurora.Surface) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := slices.Index(c.surfaces, s); i >= 0 {
		c.surfaces = slices.Delete(c.surfaces, i, i+1)
	}
}

// Contains implements aurora.Container.
func (c *Container) Contains(s aurora.Surface) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Contains(c.surfaces, s)
}

// Surfaces returns the attached surfaces in attach order.
func (c *Container) Surfaces() []aurora.Surface {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.surfaces)
}

// Len returns the number of attached surfaces.
func (c *Container) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.surfaces)
}

// FailAttach makes every later Attach return err. A nil err restores
// normal behavior.
func (c *Container) FailAttach(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failWith = err
}
