package aurora

import (
	"fmt"
	"math"
)

// Parameters controls the look of the aurora. The host owns its Parameters
// value; the renderer only copies it into its own uniform state.
type Parameters struct {
	// ColorStops is the horizontal three-stop color ramp.
	ColorStops ColorStops

	// Amplitude scales the noise displacement of the band. Visually
	// saturates above ~2.0.
	Amplitude float64

	// Blend controls the softness of the band edge. Values outside [0, 1]
	// are not clamped.
	Blend float64

	// Speed multiplies elapsed time. 0 freezes the pattern, negative
	// values play it backwards.
	Speed float64
}

// DefaultParameters returns the component defaults: a violet/green/violet
// ramp with amplitude 1, blend 0.5 and speed 1.
func DefaultParameters() Parameters {
	return Parameters{
		ColorStops: MustParseColorStops("#5227FF", "#7cff67", "#5227FF"),
		Amplitude:  1.0,
		Blend:      0.5,
		Speed:      1.0,
	}
}

// Validate checks the color stops and rejects NaN or infinite scalars.
func (p Parameters) Validate() error {
	if err := p.ColorStops.Validate(); err != nil {
		return err
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"amplitude", p.Amplitude},
		{"blend", p.Blend},
		{"speed", p.Speed},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("aurora: %s is not finite: %v", f.name, f.v)
		}
	}
	return nil
}

// ParameterUpdate changes one field of a Parameters value.
// Updates are applied through Renderer.SetParameters.
//
// Example:
//
//	r.SetParameters(aurora.WithAmplitude(0), aurora.WithSpeed(0.5))
type ParameterUpdate func(*Parameters)

// WithColorStops replaces the color ramp.
func WithColorStops(stops ColorStops) ParameterUpdate {
	return func(p *Parameters) { p.ColorStops = stops }
}

// WithAmplitude sets the noise amplitude.
func WithAmplitude(v float64) ParameterUpdate {
	return func(p *Parameters) { p.Amplitude = v }
}

// WithBlend sets the edge softness.
func WithBlend(v float64) ParameterUpdate {
	return func(p *Parameters) { p.Blend = v }
}

// WithSpeed sets the time multiplier.
func WithSpeed(v float64) ParameterUpdate {
	return func(p *Parameters) { p.Speed = v }
}

// WithParameters replaces every field at once.
func WithParameters(next Parameters) ParameterUpdate {
	return func(p *Parameters) { *p = next }
}

// Apply returns a copy of p with updates applied in order.
// p itself is not modified.
func (p Parameters) Apply(updates ...ParameterUpdate) Parameters {
	for _, u := range updates {
		if u != nil {
			u(&p)
		}
	}
	return p
}
