package aurora

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Band shaping constants of the aurora fragment program.
const (
	noiseDriftX   = 0.1  // horizontal noise drift per second of shader time
	noiseDriftY   = 0.25 // vertical noise drift per second of shader time
	bandOffset    = 0.2
	bandIntensity = 0.6
	edgeCenter    = 0.20
)

// RampSegment returns the index of the first stop of the ramp segment that
// covers horizontal position uvx: 0 for [0, 0.5) and 1 for [0.5, 1].
// The seam is closed on the left of the second segment.
func RampSegment(uvx float32) int {
	if uvx < 0.5 {
		return 0
	}
	return 1
}

// RampColor returns the two-segment horizontal gradient across the three
// stops at uvx.
func RampColor(stops *[3]mgl32.Vec3, uvx float32) mgl32.Vec3 {
	idx := RampSegment(uvx)
	t := (uvx - 0.5) * 2
	if idx == 0 {
		t = uvx * 2
	}
	return mix3(stops[idx], stops[idx+1], t)
}

// Shade evaluates the aurora fragment program for one pixel.
//
// fragCoord is the pixel center in framebuffer coordinates with the origin at
// the bottom-left corner, as gl_FragCoord / @builtin(position) with a flipped
// y. The result is premultiplied RGBA; components are not clamped.
func Shade(fragCoord mgl32.Vec2, u *Uniforms) mgl32.Vec4 {
	uv := mgl32.Vec2{fragCoord[0] / u.Resolution[0], fragCoord[1] / u.Resolution[1]}
	ramp := RampColor(&u.ColorStops, uv[0])

	alpha, intensity := BandAlpha(uv, u)
	return mgl32.Vec4{
		intensity * ramp[0] * alpha,
		intensity * ramp[1] * alpha,
		intensity * ramp[2] * alpha,
		alpha,
	}
}

// BandAlpha returns the coverage and intensity of the aurora band at uv.
func BandAlpha(uv mgl32.Vec2, u *Uniforms) (alpha, intensity float32) {
	n := SimplexNoise(mgl32.Vec2{uv[0]*2 + u.Time*noiseDriftX, u.Time * noiseDriftY})
	height := math32.Exp(n * 0.5 * u.Amplitude)
	height = uv[1]*2 - height + bandOffset
	intensity = bandIntensity * height
	alpha = smoothstep(edgeCenter-u.Blend*0.5, edgeCenter+u.Blend*0.5, intensity)
	return alpha, intensity
}

// smoothstep is GLSL smoothstep. Equal edges degrade to a step at edge0
// instead of dividing by zero.
func smoothstep(edge0, edge1, x float32) float32 {
	if edge0 == edge1 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := (x - edge0) / (edge1 - edge0)
	t = math32.Max(0, math32.Min(1, t))
	return t * t * (3 - 2*t)
}

func mix3(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}
