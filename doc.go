// Package aurora renders an animated, procedurally generated aurora as a
// full-viewport background.
//
// # Overview
//
// A Renderer owns one drawing surface, sized to a host Viewport and attached
// to a host Container. A FrameScheduler drives it: every frame the renderer
// evaluates a simplex-noise height field, tints it with a three-stop color
// ramp and paints the result with premultiplied alpha over a transparent
// background.
//
// # Quick Start
//
//	import (
//		"github.com/gogpu/aurora"
//		"github.com/gogpu/aurora/host"
//	)
//
//	vp := host.NewViewport(1280, 720)
//	sched := host.NewTickScheduler(time.Second / 60)
//	sched.Start()
//	defer sched.Stop()
//
//	r := aurora.NewRenderer(vp, sched)
//	if err := r.Mount(host.NewContainer(), aurora.DefaultParameters()); err != nil {
//		log.Fatal(err)
//	}
//	defer r.Unmount()
//
//	// Live updates take effect on the next frame.
//	_ = r.SetParameters(aurora.WithAmplitude(1.2), aurora.WithSpeed(0.8))
//
// # Parameters
//
// Parameters hold three color stops, an amplitude scaling the height field,
// a blend width softening the band edge and a speed multiplier applied to
// elapsed time. Color stops are parsed from hex with ParseColorStops.
//
// # Backends
//
// Surfaces come from a Backend. The software backend evaluates the program
// on the CPU and is always registered. Importing the gpu package registers a
// WebGPU backend that DefaultBackend prefers:
//
//	import _ "github.com/gogpu/aurora/gpu"
//
// # Errors
//
// A failed Mount returns an *InitError matching ErrRenderInitialization.
// Losing the drawing context stops the render loop; Err reports
// ErrContextLost until the renderer is mounted again.
//
// # Logging
//
// The package logs through log/slog and is silent by default. Use SetLogger
// to enable output.
package aurora
