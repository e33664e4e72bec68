package aurora

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestUniformsBytesLayout(t *testing.T) {
	u := Uniforms{
		ColorStops: [3]mgl32.Vec3{{0.1, 0.2, 0.3}, {0.4, 0.5, 0.6}, {0.7, 0.8, 0.9}},
		Resolution: mgl32.Vec2{1920, 1080},
		Time:       12.5,
		Amplitude:  1.2,
		Blend:      0.6,
	}
	buf := u.Bytes()
	if len(buf) != UniformSize {
		t.Fatalf("len(Bytes()) = %d, want %d", len(buf), UniformSize)
	}

	at := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
	}
	tests := []struct {
		name string
		off  int
		want float32
	}{
		{"stop0.r", 0, 0.1},
		{"stop0.b", 8, 0.3},
		{"stop0.w", 12, 0},
		{"stop1.r", 16, 0.4},
		{"stop2.b", 40, 0.9},
		{"resolution.x", 48, 1920},
		{"resolution.y", 52, 1080},
		{"time", 56, 12.5},
		{"amplitude", 60, 1.2},
		{"blend", 64, 0.6},
		{"pad", 68, 0},
		{"pad", 76, 0},
	}
	for _, tt := range tests {
		if got := at(tt.off); got != tt.want {
			t.Errorf("%s at %d = %v, want %v", tt.name, tt.off, got, tt.want)
		}
	}
}

func TestUniformsSetParameters(t *testing.T) {
	var u Uniforms
	p := DefaultParameters().Apply(WithAmplitude(2), WithBlend(0.25), WithSpeed(7))
	u.SetParameters(p)
	u.SetResolution(640, 480)

	if u.Amplitude != 2 || u.Blend != 0.25 {
		t.Errorf("scalars = (%v, %v), want (2, 0.25)", u.Amplitude, u.Blend)
	}
	if u.Time != 0 {
		t.Errorf("SetParameters touched Time: %v", u.Time)
	}
	if u.Resolution != (mgl32.Vec2{640, 480}) {
		t.Errorf("Resolution = %v", u.Resolution)
	}
	want := mgl32.Vec3{float32(0x7c) / 255, 1, float32(0x67) / 255}
	if !vec3Near(u.ColorStops[1], want, 1e-6) {
		t.Errorf("ColorStops[1] = %v, want %v", u.ColorStops[1], want)
	}
}
