// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package host

import (
	"sync"
	"time"

	"github.com/gogpu/aurora"
)

// ManualScheduler fires frames only when stepped.
//
// Example:
//
//	sched := host.NewManualScheduler()
//	r := aurora.NewRenderer(vp, sched)
//	_ = r.Mount(c, aurora.DefaultParameters())
//	sched.Step(0)                      // first frame, t = 0
//	sched.Step(500 * time.Millisecond) // t = 0.5 * speed
type ManualScheduler struct {
	q frameQueue

	mu  sync.Mutex
	now time.Duration
}

var _ aurora.FrameScheduler = (*ManualScheduler)(nil)

// NewManualScheduler returns a scheduler with no pending frames.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// RequestFrame implements aurora.FrameScheduler.
func (m *ManualScheduler) RequestFrame(cb aurora.FrameCallback) aurora.FrameID {
	return m.q.request(cb)
}

// CancelFrame implements aurora.FrameScheduler.
func (m *ManualScheduler) CancelFrame(id aurora.FrameID) {
	m.q.cancel(id)
}

// Pending returns the number of frames waiting to fire.
func (m *ManualScheduler) Pending() int {
	return m.q.len()
}

// Step fires the pending frames with timestamp ts and returns how many ran.
func (m *ManualScheduler) Step(ts time.Duration) int {
	m.mu.Lock()
	m.now = ts
	m.mu.Unlock()
	return m.q.fire(ts)
}

// Advance moves the clock forward by d and fires the pending frames.
func (m *ManualScheduler) Advance(d time.Duration) int {
	m.mu.Lock()
	m.now += d
	ts := m.now
	m.mu.Unlock()
	return m.q.fire(ts)
}

// Now returns the timestamp of the last step.
func (m *ManualScheduler) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}
