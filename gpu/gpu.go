//go:build !nogpu

// Package gpu registers a WebGPU backend for aurora.
//
// The backend draws the aurora with a WGSL render pipeline on a wgpu/hal
// device: one full-screen triangle, one uniform buffer and a BGRA8 render
// target blended with premultiplied alpha.
//
// If GPU initialization fails (no Vulkan adapter available), the backend
// factory reports the error and aurora.DefaultBackend falls back to the
// software backend.
//
// Usage:
//
//	import _ "github.com/gogpu/aurora/gpu" // enable GPU rendering
//
// To share a device owned by a windowing toolkit, build the backend from
// its provider instead:
//
//	b, err := gpu.NewBackendFromProvider(provider)
//	r := aurora.NewRenderer(vp, sched, aurora.WithBackend(b))
package gpu

import "github.com/gogpu/aurora"

func init() {
	aurora.RegisterBackend(aurora.BackendGPU, func() (aurora.Backend, error) {
		b, err := NewBackend()
		if err != nil {
			aurora.Logger().Warn("GPU backend not available", "err", err)
			return nil, err
		}
		return b, nil
	})
}
