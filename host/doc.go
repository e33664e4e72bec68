// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package host provides headless implementations of the aurora host
// contract: a container, a resizable viewport and two frame schedulers.
//
// ManualScheduler fires frames only when stepped and is meant for tests and
// offline rendering. TickScheduler fires frames from a goroutine at a fixed
// interval, standing in for a display's refresh callback.
package host
