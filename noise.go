package aurora

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// simplexC holds the skew constants of 2D simplex noise:
// (3-sqrt(3))/6, (sqrt(3)-1)/2, -1+2*C.x and 1/41.
var simplexC = mgl32.Vec4{0.211324865405187, 0.366025403784439, -0.577350269189626, 0.024390243902439}

// hashPeriod is the permutation polynomial modulus. The noise tiles with
// this period; it is part of the look and must not be tuned.
const hashPeriod = 289.0

// SimplexNoise returns 2D simplex gradient noise at v in roughly [-1, 1].
//
// This is the widely used shader formulation by Ian McEwan and Stefan
// Gustavson (permutation polynomial hash, gradients on a cross-polytope)
// evaluated in float32 so the CPU and GPU paths agree.
func SimplexNoise(v mgl32.Vec2) float32 {
	c := simplexC

	// First corner.
	s := (v[0] + v[1]) * c[1]
	i := mgl32.Vec2{math32.Floor(v[0] + s), math32.Floor(v[1] + s)}
	t := (i[0] + i[1]) * c[0]
	x0 := mgl32.Vec2{v[0] - i[0] + t, v[1] - i[1] + t}

	// Other corners.
	i1 := mgl32.Vec2{0, 1}
	if x0[0] > x0[1] {
		i1 = mgl32.Vec2{1, 0}
	}
	x12 := mgl32.Vec4{x0[0] + c[0], x0[1] + c[0], x0[0] + c[2], x0[1] + c[2]}
	x12[0] -= i1[0]
	x12[1] -= i1[1]

	// Permutations.
	i = mgl32.Vec2{glslMod(i[0], hashPeriod), glslMod(i[1], hashPeriod)}
	p := permute(mgl32.Vec3{i[1], i[1] + i1[1], i[1] + 1})
	p = permute(mgl32.Vec3{p[0] + i[0], p[1] + i[0] + i1[0], p[2] + i[0] + 1})

	var m mgl32.Vec3
	m[0] = 0.5 - x0.Dot(x0)
	m[1] = 0.5 - (x12[0]*x12[0] + x12[1]*x12[1])
	m[2] = 0.5 - (x12[2]*x12[2] + x12[3]*x12[3])
	for k := range m {
		m[k] = math32.Max(m[k], 0)
		m[k] = m[k] * m[k] * m[k] * m[k]
	}

	// Gradients: 41 points uniformly over a line, mapped onto a diamond.
	var g mgl32.Vec3
	var a0, h mgl32.Vec3
	for k := range p {
		x := 2*fract(p[k]*c[3]) - 1
		h[k] = math32.Abs(x) - 0.5
		ox := math32.Floor(x + 0.5)
		a0[k] = x - ox

		// Normalise gradients implicitly by scaling m.
		m[k] *= 1.79284291400159 - 0.85373472095314*(a0[k]*a0[k]+h[k]*h[k])
	}

	g[0] = a0[0]*x0[0] + h[0]*x0[1]
	g[1] = a0[1]*x12[0] + h[1]*x12[1]
	g[2] = a0[2]*x12[2] + h[2]*x12[3]
	return 130 * m.Dot(g)
}

// permute computes ((x*34)+1)*x mod 289 per component.
func permute(x mgl32.Vec3) mgl32.Vec3 {
	for k := range x {
		x[k] = glslMod((x[k]*34+1)*x[k], hashPeriod)
	}
	return x
}

// glslMod is GLSL mod: x - y*floor(x/y). Unlike math.Mod the result has
// the sign of y.
func glslMod(x, y float32) float32 {
	return x - y*math32.Floor(x/y)
}

// fract returns x - floor(x).
func fract(x float32) float32 {
	return x - math32.Floor(x)
}
