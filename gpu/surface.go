//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/aurora"
)

const (
	// copyPitchAlignment is the WebGPU row alignment for texture copies.
	copyPitchAlignment = 256

	// fenceTimeout bounds a wait for one frame.
	fenceTimeout = 5 * time.Second

	targetFormat = gputypes.TextureFormatBGRA8Unorm
)

// fullScreenTriangle covers clip space with one triangle; the parts outside
// [-1, 1] are clipped.
var fullScreenTriangle = [6]float32{
	-1, -1,
	3, -1,
	-1, 3,
}

// Surface draws the aurora into an offscreen BGRA8 texture.
//
// Surface is NOT safe for concurrent use; the aurora.Renderer serialises
// calls.
type Surface struct {
	backend *Backend
	device  hal.Device
	queue   hal.Queue
	label   string

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
	vertBuf    hal.Buffer
	uniformBuf hal.Buffer
	bindGroup  hal.BindGroup

	width, height uint32
	target        hal.Texture
	targetView    hal.TextureView

	frames   uint64
	lost     bool
	released bool
}

var (
	_ aurora.Surface      = (*Surface)(nil)
	_ aurora.PixelReader  = (*Surface)(nil)
	_ aurora.ContextLoser = (*Surface)(nil)
)

func newSurface(b *Backend, cfg aurora.SurfaceConfig) (*Surface, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: width=%d, height=%d", aurora.ErrInvalidDimensions, cfg.Width, cfg.Height)
	}
	s := &Surface{
		backend: b,
		device:  b.device,
		queue:   b.queue,
		label:   cfg.Label,
	}
	if err := s.createProgram(); err != nil {
		s.destroy()
		return nil, &aurora.InitError{Stage: aurora.StageProgram, Err: err}
	}
	if err := s.createBuffers(); err != nil {
		s.destroy()
		return nil, &aurora.InitError{Stage: aurora.StageProgram, Err: err}
	}
	if err := s.createTarget(uint32(cfg.Width), uint32(cfg.Height)); err != nil { //nolint:gosec // validated positive
		s.destroy()
		return nil, &aurora.InitError{Stage: aurora.StageSurface, Err: err}
	}
	aurora.Logger().Debug("gpu surface created", "label", cfg.Label, "width", cfg.Width, "height", cfg.Height)
	return s, nil
}

func (s *Surface) resourceLabel(name string) string {
	if s.label == "" {
		return "aurora_" + name
	}
	return s.label + "_" + name
}

// createProgram compiles the shader and builds the render pipeline with
// premultiplied alpha blending.
func (s *Surface) createProgram() error {
	shader, err := s.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  s.resourceLabel("shader"),
		Source: hal.ShaderSource{WGSL: ShaderSource},
	})
	if err != nil {
		return fmt.Errorf("compile aurora shader: %w", err)
	}
	s.shader = shader

	bindLayout, err := s.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: s.resourceLabel("bind_layout"),
		Entries: []gputypes.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
		}},
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	s.bindLayout = bindLayout

	pipeLayout, err := s.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            s.resourceLabel("pipe_layout"),
		BindGroupLayouts: []hal.BindGroupLayout{bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	s.pipeLayout = pipeLayout

	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := s.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  s.resourceLabel("pipeline"),
		Layout: pipeLayout,
		Vertex: hal.VertexState{
			Module:     shader,
			EntryPoint: VertexEntryPoint,
			Buffers: []gputypes.VertexBufferLayout{{
				ArrayStride: 8,
				StepMode:    gputypes.VertexStepModeVertex,
				Attributes: []gputypes.VertexAttribute{{
					Format:         gputypes.VertexFormatFloat32x2,
					Offset:         0,
					ShaderLocation: 0,
				}},
			}},
		},
		Fragment: &hal.FragmentState{
			Module:     shader,
			EntryPoint: FragmentEntryPoint,
			Targets: []gputypes.ColorTargetState{{
				Format:    targetFormat,
				Blend:     &premulBlend,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
	})
	if err != nil {
		return fmt.Errorf("create render pipeline: %w", err)
	}
	s.pipeline = pipeline
	return nil
}

// createBuffers uploads the full-screen triangle and allocates the uniform
// buffer and its bind group.
func (s *Surface) createBuffers() error {
	vertBytes := make([]byte, len(fullScreenTriangle)*4)
	for i, v := range fullScreenTriangle {
		binary.LittleEndian.PutUint32(vertBytes[i*4:], math.Float32bits(v))
	}
	vertBuf, err := s.device.CreateBuffer(&hal.BufferDescriptor{
		Label: s.resourceLabel("vertices"),
		Size:  uint64(len(vertBytes)),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create vertex buffer: %w", err)
	}
	s.vertBuf = vertBuf
	s.queue.WriteBuffer(vertBuf, 0, vertBytes)

	uniformBuf, err := s.device.CreateBuffer(&hal.BufferDescriptor{
		Label: s.resourceLabel("uniforms"),
		Size:  aurora.UniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create uniform buffer: %w", err)
	}
	s.uniformBuf = uniformBuf

	bindGroup, err := s.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  s.resourceLabel("bind"),
		Layout: s.bindLayout,
		Entries: []gputypes.BindGroupEntry{{
			Binding:  0,
			Resource: gputypes.BufferBinding{Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: aurora.UniformSize},
		}},
	})
	if err != nil {
		return fmt.Errorf("create bind group: %w", err)
	}
	s.bindGroup = bindGroup
	return nil
}

// createTarget allocates a w x h render target and swaps it in. On error
// the current target is kept.
func (s *Surface) createTarget(w, h uint32) error {
	tex, err := s.device.CreateTexture(&hal.TextureDescriptor{
		Label:         s.resourceLabel("target"),
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        targetFormat,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create target texture: %w", err)
	}
	view, err := s.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         s.resourceLabel("target_view"),
		Format:        targetFormat,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		s.device.DestroyTexture(tex)
		return fmt.Errorf("create target view: %w", err)
	}
	s.destroyTarget()
	s.target, s.targetView = tex, view
	s.width, s.height = w, h
	return nil
}

// Size implements aurora.Surface.
func (s *Surface) Size() (width, height int) {
	return int(s.width), int(s.height)
}

// Resize implements aurora.Surface. Resizing to the current size is a no-op.
func (s *Surface) Resize(width, height int) error {
	if s.released {
		return aurora.ErrSurfaceReleased
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: width=%d, height=%d", aurora.ErrInvalidDimensions, width, height)
	}
	w, h := uint32(width), uint32(height) //nolint:gosec // validated positive
	if w == s.width && h == s.height {
		return nil
	}
	return s.createTarget(w, h)
}

// Draw implements aurora.Surface. It uploads u, clears the target to
// transparent and draws the full-screen triangle.
func (s *Surface) Draw(u *aurora.Uniforms) error {
	if s.released {
		return aurora.ErrSurfaceReleased
	}
	if s.lost {
		return aurora.ErrContextLost
	}
	if s.targetView == nil {
		return fmt.Errorf("gpu: surface %q has no render target", s.label)
	}
	s.queue.WriteBuffer(s.uniformBuf, 0, u.Bytes())

	encoder, err := s.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: s.resourceLabel("encoder"),
	})
	if err != nil {
		return s.loseContext(fmt.Errorf("create command encoder: %w", err))
	}
	if err := encoder.BeginEncoding(s.resourceLabel("frame")); err != nil {
		return s.loseContext(fmt.Errorf("begin encoding: %w", err))
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: s.resourceLabel("pass"),
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       s.targetView,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 0},
		}},
	})
	rp.SetPipeline(s.pipeline)
	rp.SetBindGroup(0, s.bindGroup, nil)
	rp.SetVertexBuffer(0, s.vertBuf, 0)
	rp.Draw(3, 1, 0, 0)
	rp.End()

	if err := s.submit(encoder); err != nil {
		return err
	}
	s.frames++
	return nil
}

// submit ends encoding, submits and waits for the GPU. Failures mark the
// surface lost.
func (s *Surface) submit(encoder hal.CommandEncoder) error {
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return s.loseContext(fmt.Errorf("end encoding: %w", err))
	}
	defer s.device.FreeCommandBuffer(cmdBuf)

	fence, err := s.device.CreateFence()
	if err != nil {
		return s.loseContext(fmt.Errorf("create fence: %w", err))
	}
	defer s.device.DestroyFence(fence)

	if err := s.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return s.loseContext(fmt.Errorf("submit: %w", err))
	}
	fenceOK, err := s.device.Wait(fence, 1, fenceTimeout)
	if err != nil || !fenceOK {
		return s.loseContext(fmt.Errorf("wait for GPU: ok=%v err=%v", fenceOK, err))
	}
	return nil
}

func (s *Surface) loseContext(cause error) error {
	s.lost = true
	aurora.Logger().Warn("gpu context lost", "label", s.label, "err", cause)
	return fmt.Errorf("%w: %v", aurora.ErrContextLost, cause)
}

// ReadPixels implements aurora.PixelReader. It copies the target into a
// staging buffer and converts BGRA rows to premultiplied RGBA.
func (s *Surface) ReadPixels(dst *aurora.Pixmap) error {
	if s.released {
		return aurora.ErrSurfaceReleased
	}
	if s.lost {
		return aurora.ErrContextLost
	}
	w, h := s.width, s.height
	bytesPerRow := w * 4
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingSize := uint64(alignedBytesPerRow) * uint64(h)

	stagingBuf, err := s.device.CreateBuffer(&hal.BufferDescriptor{
		Label: s.resourceLabel("staging"),
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create staging buffer: %w", err)
	}
	defer s.device.DestroyBuffer(stagingBuf)

	encoder, err := s.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: s.resourceLabel("readback_encoder"),
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(s.resourceLabel("readback")); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: s.target,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(s.target, stagingBuf, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: s.target, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: s.target,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})
	if err := s.submit(encoder); err != nil {
		return err
	}

	readback := make([]byte, stagingSize)
	if err := s.queue.ReadBuffer(stagingBuf, 0, readback); err != nil {
		return fmt.Errorf("readback: %w", err)
	}
	if dst.Width() != int(w) || dst.Height() != int(h) {
		dst.Resize(int(w), int(h))
	}
	copyBGRARows(dst.Data(), readback, int(w), int(h), int(alignedBytesPerRow))
	return nil
}

// copyBGRARows strips row padding from src and swizzles BGRA to RGBA.
func copyBGRARows(dst, src []byte, w, h, srcStride int) {
	for y := 0; y < h; y++ {
		srcRow := src[y*srcStride : y*srcStride+w*4]
		dstRow := dst[y*w*4 : (y+1)*w*4]
		for x := 0; x < w*4; x += 4 {
			dstRow[x+0] = srcRow[x+2]
			dstRow[x+1] = srcRow[x+1]
			dstRow[x+2] = srcRow[x+0]
			dstRow[x+3] = srcRow[x+3]
		}
	}
}

// Frames returns the number of frames drawn.
func (s *Surface) Frames() uint64 { return s.frames }

// Lose marks the context lost. Subsequent draws return aurora.ErrContextLost.
func (s *Surface) Lose() { s.lost = true }

// Release implements aurora.Surface.
func (s *Surface) Release() error {
	if s.released {
		return nil
	}
	s.released = true
	s.destroy()
	s.backend.surfaceReleased()
	aurora.Logger().Debug("gpu surface released", "label", s.label, "frames", s.frames)
	return nil
}

func (s *Surface) destroyTarget() {
	if s.targetView != nil {
		s.device.DestroyTextureView(s.targetView)
		s.targetView = nil
	}
	if s.target != nil {
		s.device.DestroyTexture(s.target)
		s.target = nil
	}
	s.width, s.height = 0, 0
}

// destroy frees every resource in reverse creation order. It is safe on a
// partially built surface.
func (s *Surface) destroy() {
	s.destroyTarget()
	if s.bindGroup != nil {
		s.device.DestroyBindGroup(s.bindGroup)
		s.bindGroup = nil
	}
	if s.uniformBuf != nil {
		s.device.DestroyBuffer(s.uniformBuf)
		s.uniformBuf = nil
	}
	if s.vertBuf != nil {
		s.device.DestroyBuffer(s.vertBuf)
		s.vertBuf = nil
	}
	if s.pipeline != nil {
		s.device.DestroyRenderPipeline(s.pipeline)
		s.pipeline = nil
	}
	if s.pipeLayout != nil {
		s.device.DestroyPipelineLayout(s.pipeLayout)
		s.pipeLayout = nil
	}
	if s.bindLayout != nil {
		s.device.DestroyBindGroupLayout(s.bindLayout)
		s.bindLayout = nil
	}
	if s.shader != nil {
		s.device.DestroyShaderModule(s.shader)
		s.shader = nil
	}
}
