package aurora

import (
	"fmt"
	"math"
)

// RGB is an opaque color with components in the range [0, 1].
type RGB struct {
	R, G, B float64
}

// ColorStops is the three-stop color ramp sampled across the viewport.
// Stop 0 sits at the left edge, stop 1 at the center and stop 2 at the
// right edge.
type ColorStops [3]RGB

// Lerp performs linear interpolation between two colors (GLSL mix).
func (c RGB) Lerp(other RGB, t float64) RGB {
	return RGB{
		R: c.R + (other.R-c.R)*t,
		G: c.G + (other.G-c.G)*t,
		B: c.B + (other.B-c.B)*t,
	}
}

// Valid reports whether every component is a finite value in [0, 1].
func (c RGB) Valid() bool {
	return unit(c.R) && unit(c.G) && unit(c.B)
}

// Hex returns the color as a "#rrggbb" string.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", to255(c.R), to255(c.G), to255(c.B))
}

func unit(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}

func to255(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

// ParseHex parses a color from a hex string.
// Supports "RGB" and "RRGGBB", with or without a leading '#'.
func ParseHex(hex string) (RGB, error) {
	s := hex
	if s != "" && s[0] == '#' {
		s = s[1:]
	}

	var r, g, b uint32
	var ok bool
	switch len(s) {
	case 3:
		ok = parseHex(s[0:1], &r) && parseHex(s[1:2], &g) && parseHex(s[2:3], &b)
		r, g, b = r*17, g*17, b*17
	case 6:
		ok = parseHex(s[0:2], &r) && parseHex(s[2:4], &g) && parseHex(s[4:6], &b)
	}
	if !ok {
		return RGB{}, fmt.Errorf("%w: malformed hex color %q", ErrInvalidColorStops, hex)
	}

	return RGB{
		R: float64(r) / 255,
		G: float64(g) / 255,
		B: float64(b) / 255,
	}, nil
}

// MustParseHex is like ParseHex but panics on error.
// Use only for hardcoded colors.
func MustParseHex(hex string) RGB {
	c, err := ParseHex(hex)
	if err != nil {
		panic(err)
	}
	return c
}

// parseHex accumulates hex digits of s into val.
// Returns false on the first non-hex character.
func parseHex(s string, val *uint32) bool {
	*val = 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		*val *= 16
		switch {
		case '0' <= c && c <= '9':
			*val += uint32(c - '0')
		case 'a' <= c && c <= 'f':
			*val += uint32(c - 'a' + 10)
		case 'A' <= c && c <= 'F':
			*val += uint32(c - 'A' + 10)
		default:
			return false
		}
	}
	return true
}

// NewColorStops builds a ColorStops from a slice. The slice must hold
// exactly three valid colors.
func NewColorStops(colors []RGB) (ColorStops, error) {
	var stops ColorStops
	if len(colors) != len(stops) {
		return stops, fmt.Errorf("%w: want %d colors, got %d", ErrInvalidColorStops, len(stops), len(colors))
	}
	copy(stops[:], colors)
	if err := stops.Validate(); err != nil {
		return ColorStops{}, err
	}
	return stops, nil
}

// ParseColorStops builds a ColorStops from exactly three hex strings.
func ParseColorStops(hex ...string) (ColorStops, error) {
	if len(hex) != len(ColorStops{}) {
		return ColorStops{}, fmt.Errorf("%w: want 3 colors, got %d", ErrInvalidColorStops, len(hex))
	}
	colors := make([]RGB, len(hex))
	for i, h := range hex {
		c, err := ParseHex(h)
		if err != nil {
			return ColorStops{}, fmt.Errorf("stop %d: %w", i, err)
		}
		colors[i] = c
	}
	return NewColorStops(colors)
}

// MustParseColorStops is like ParseColorStops but panics on error.
func MustParseColorStops(hex ...string) ColorStops {
	s, err := ParseColorStops(hex...)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate reports ErrInvalidColorStops if any stop has a component outside
// [0, 1] or a NaN.
func (s ColorStops) Validate() error {
	for i, c := range s {
		if !c.Valid() {
			return fmt.Errorf("%w: stop %d out of range: %+v", ErrInvalidColorStops, i, c)
		}
	}
	return nil
}

// Hex returns the stops as hex strings.
func (s ColorStops) Hex() []string {
	out := make([]string, len(s))
	for i, c := range s {
		out[i] = c.Hex()
	}
	return out
}
