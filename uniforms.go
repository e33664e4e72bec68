package aurora

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// UniformSize is the byte size of the encoded uniform block.
//
// Layout (WGSL uniform address space, 16-byte aligned):
//
//	color_stops (array<vec4<f32>, 3>) = 48 bytes  (offset 0, w unused)
//	resolution  (vec2<f32>)           = 8 bytes   (offset 48)
//	time        (f32)                 = 4 bytes   (offset 56)
//	amplitude   (f32)                 = 4 bytes   (offset 60)
//	blend       (f32)                 = 4 bytes   (offset 64)
//	padding                           = 12 bytes  (offset 68)
const UniformSize = 80

// Uniforms is the per-frame input of the aurora program. A mounted Renderer
// owns one Uniforms value mirrored from the host's Parameters.
type Uniforms struct {
	ColorStops [3]mgl32.Vec3
	Resolution mgl32.Vec2
	Time       float32
	Amplitude  float32
	Blend      float32
}

// SetParameters copies the color stops, amplitude and blend of p.
// Speed is not a uniform; the render loop folds it into Time.
func (u *Uniforms) SetParameters(p Parameters) {
	for i, c := range p.ColorStops {
		u.ColorStops[i] = mgl32.Vec3{float32(c.R), float32(c.G), float32(c.B)}
	}
	u.Amplitude = float32(p.Amplitude)
	u.Blend = float32(p.Blend)
}

// SetResolution sets the viewport size in pixels.
func (u *Uniforms) SetResolution(width, height int) {
	u.Resolution = mgl32.Vec2{float32(width), float32(height)}
}

// Bytes encodes u into the little-endian uniform block layout described
// by UniformSize.
func (u *Uniforms) Bytes() []byte {
	buf := make([]byte, UniformSize)
	u.encode(buf)
	return buf
}

func (u *Uniforms) encode(buf []byte) {
	put := func(off int, v float32) {
		binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(v))
	}
	for i, c := range u.ColorStops {
		base := i * 16
		put(base+0, c[0])
		put(base+4, c[1])
		put(base+8, c[2])
		put(base+12, 0)
	}
	put(48, u.Resolution[0])
	put(52, u.Resolution[1])
	put(56, u.Time)
	put(60, u.Amplitude)
	put(64, u.Blend)
	for off := 68; off < UniformSize; off += 4 {
		put(off, 0)
	}
}
