// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package host

import (
	"context"
	"sync"
	"time"

	"github.com/gogpu/aurora"
)

// DefaultInterval is a 60 Hz refresh.
const DefaultInterval = time.Second / 60

// TickScheduler fires pending frames from a goroutine at a fixed interval.
// Timestamps are measured from Start with the monotonic clock.
type TickScheduler struct {
	q        frameQueue
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	ticks  uint64
}

var _ aurora.FrameScheduler = (*TickScheduler)(nil)

// NewTickScheduler returns a stopped scheduler. A non-positive interval
// uses DefaultInterval.
func NewTickScheduler(interval time.Duration) *TickScheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &TickScheduler{interval: interval}
}

// RequestFrame implements aurora.FrameScheduler.
func (t *TickScheduler) RequestFrame(cb aurora.FrameCallback) aurora.FrameID {
	return t.q.request(cb)
}

// CancelFrame implements aurora.FrameScheduler.
func (t *TickScheduler) CancelFrame(id aurora.FrameID) {
	t.q.cancel(id)
}

// Interval returns the tick interval.
func (t *TickScheduler) Interval() time.Duration { return t.interval }

// Start begins ticking. Starting a running scheduler does nothing.
func (t *TickScheduler) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.done = make(chan struct{})
	go t.run(ctx, time.Now(), t.done)
}

// Stop halts ticking and waits for a running callback to return.
// Stop must not be called from inside a frame callback.
func (t *TickScheduler) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the scheduler is ticking.
func (t *TickScheduler) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}

// Ticks returns the number of ticks that fired at least one frame.
func (t *TickScheduler) Ticks() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ticks
}

func (t *TickScheduler) run(ctx context.Context, start time.Time, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if t.q.fire(time.Since(start)) > 0 {
				t.mu.Lock()
				t.ticks++
				t.mu.Unlock()
			}
		}
	}
}
