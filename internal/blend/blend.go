// Package blend implements the premultiplied-alpha compositing used by the
// software surface.
//
// All byte operations work with premultiplied values in the range 0-255,
// matching a GPU blend state of (One, OneMinusSrcAlpha).
package blend

// Factor is a blend factor of a fixed-function blend equation.
type Factor uint8

const (
	// FactorZero multiplies by 0.
	FactorZero Factor = iota
	// FactorOne multiplies by 1.
	FactorOne
	// FactorOneMinusSrcAlpha multiplies by 1 - source alpha.
	FactorOneMinusSrcAlpha
)

// State is a fixed-function blend equation dst = src*Src + dst*Dst.
type State struct {
	Src Factor
	Dst Factor
}

// Premultiplied is the source-over state for premultiplied colors.
var Premultiplied = State{Src: FactorOne, Dst: FactorOneMinusSrcAlpha}

// Replace overwrites the destination.
var Replace = State{Src: FactorOne, Dst: FactorZero}

// Apply composites the premultiplied source pixel over the destination pixel
// dst (4 bytes, RGBA) and stores the result in dst.
func (s State) Apply(dst []byte, sr, sg, sb, sa byte) {
	_ = dst[3]
	src := [4]byte{sr, sg, sb, sa}
	for i := range src {
		dst[i] = addClamp(scale(src[i], s.Src, sa), scale(dst[i], s.Dst, sa))
	}
}

func scale(v byte, f Factor, sa byte) byte {
	switch f {
	case FactorOne:
		return v
	case FactorOneMinusSrcAlpha:
		return mulDiv255(v, inv255(sa))
	default:
		return 0
	}
}

// SourceOver composites a premultiplied source pixel over dst.
// Formula: S + D*(1-Sa).
func SourceOver(dst []byte, sr, sg, sb, sa byte) {
	Premultiplied.Apply(dst, sr, sg, sb, sa)
}

// Quantize converts a premultiplied float component to a byte, clamping to
// [0, 1] the way a unorm render target does.
func Quantize(v float32) byte {
	switch {
	case v != v: // NaN
		return 0
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return byte(v*255 + 0.5)
}
