// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package host

import (
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/gogpu/aurora"
)

// frameQueue holds pending frame callbacks keyed by id.
type frameQueue struct {
	mu      sync.Mutex
	next    aurora.FrameID
	pending map[aurora.FrameID]aurora.FrameCallback
}

func (q *frameQueue) request(cb aurora.FrameCallback) aurora.FrameID {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.pending == nil {
		q.pending = make(map[aurora.FrameID]aurora.FrameCallback)
	}
	q.next++
	q.pending[q.next] = cb
	return q.next
}

func (q *frameQueue) cancel(id aurora.FrameID) {
	q.mu.Lock()
	delete(q.pending, id)
	q.mu.Unlock()
}

func (q *frameQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// fire runs every callback pending when fire was called, in request order.
// Callbacks requested while firing wait for the next call. A callback
// cancelled before its turn does not run.
func (q *frameQueue) fire(ts time.Duration) int {
	q.mu.Lock()
	ids := slices.Sorted(maps.Keys(q.pending))
	q.mu.Unlock()

	n := 0
	for _, id := range ids {
		q.mu.Lock()
		cb, ok := q.pending[id]
		delete(q.pending, id)
		q.mu.Unlock()
		if !ok {
			continue
		}
		cb(ts)
		n++
	}
	return n
}
