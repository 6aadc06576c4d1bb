// Package perlinpalette walks each strip through a fixed colour gradient
// using Perlin noise.
package perlinpalette

import (
	"math"

	"github.com/aquilax/go-perlin"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/nerrad567/ledbetter/animation"
	"github.com/nerrad567/ledbetter/animations/internal/argb"
	"github.com/nerrad567/ledbetter/animations/internal/noise"
)

// Params tunes the noise field.
type Params struct {
	// GradBound is how many noise units one strip spans.
	GradBound float64 `param:"grad_bound" yaml:"grad_bound"`

	// GradTimeIncr is the time step through the noise per tick.
	GradTimeIncr float64 `param:"grad_time_incr" yaml:"grad_time_incr"`

	// HueDistRads is accepted for parity with perlincycle and not read.
	HueDistRads float64 `param:"hue_dist_rads" yaml:"hue_dist_rads"`
}

// DefaultParams returns the stock tuning.
func DefaultParams() Params {
	return Params{GradBound: 3, GradTimeIncr: 0.02, HueDistRads: math.Pi}
}

// Definition registers the animation with the runtime.
var Definition = animation.Definition[Params]{
	Name:     "perlinpalette",
	Defaults: DefaultParams,
	New:      New,
}

// Palette stops, evenly spaced. The repeated ends widen the outer bands.
var stops = []string{
	"#D7263D", "#D7263D", "#F46036", "#2E294E", "#1B998B", "#C5D86D", "#C5D86D",
}

// Gradient is an evenly spaced list of colours.
type Gradient []colorful.Color

// NewGradient parses hex stops. It panics on a malformed stop.
func NewGradient(hex ...string) Gradient {
	g := make(Gradient, len(hex))
	for i, h := range hex {
		c, err := colorful.Hex(h)
		if err != nil {
			panic(err)
		}
		g[i] = c
	}
	return g
}

// At returns the colour at t in [0, 1], blending neighbouring stops in
// linear RGB. t outside the range is clamped.
func (g Gradient) At(t float64) colorful.Color {
	if len(g) == 1 {
		return g[0]
	}
	t = min(max(t, 0), 1)
	pos := t * float64(len(g)-1)
	i := int(pos)
	if i >= len(g)-1 {
		return g[len(g)-1]
	}
	return g[i].BlendLinearRgb(g[i+1], pos-float64(i))
}

// PerlinPalette is the animation state.
type PerlinPalette struct {
	time     float64
	gens     []*perlin.Perlin
	gradient Gradient
}

// New seeds one generator per strip.
func New(_ *Params, layout animation.Layout) animation.Animation[Params] {
	return &PerlinPalette{
		gens:     noise.PerStrip(len(layout)),
		gradient: NewGradient(stops...),
	}
}

// Tick advances time.
func (a *PerlinPalette) Tick(*Params) {
	a.time++
}

// Render samples the gradient per pixel.
func (a *PerlinPalette) Render(p *Params, pixels animation.Pixels) {
	for s, strip := range pixels {
		if len(strip) == 0 {
			continue
		}
		gen := a.gens[s]
		scale := noise.Scale(p.GradBound, len(strip))
		for i := range strip {
			n := gen.Noise2D(float64(i)*scale, a.time*p.GradTimeIncr)
			strip[i] = argb.Pack(a.gradient.At(noise.Unit(n)))
		}
	}
}
