// Package perlincycle drifts each strip through hue and brightness using
// Perlin noise, on top of a base hue that rotates slowly.
package perlincycle

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
	// HueBound and ValBound are how many noise units one strip spans.
	HueBound float64 `param:"hue_bound" yaml:"hue_bound"`
	ValBound float64 `param:"val_bound" yaml:"val_bound"`

	// Time step through the noise per tick.
	HueTimeIncr float64 `param:"hue_time_incr" yaml:"hue_time_incr"`
	ValTimeIncr float64 `param:"val_time_incr" yaml:"val_time_incr"`

	// BaseHueIncr rotates the base hue, in degrees per tick.
	BaseHueIncr float64 `param:"base_hue_incr" yaml:"base_hue_incr"`

	// HueDistRads is how far noise may push a pixel off the base hue.
	HueDistRads float64 `param:"hue_dist_rads" yaml:"hue_dist_rads"`
}

// DefaultParams returns the stock tuning.
func DefaultParams() Params {
	return Params{
		HueBound:    3,
		ValBound:    5,
		HueTimeIncr: 0.02,
		ValTimeIncr: 0.02,
		BaseHueIncr: 0.5,
		HueDistRads: math.Pi,
	}
}

// Definition registers the animation with the runtime.
var Definition = animation.Definition[Params]{
	Name:     "perlincycle",
	Defaults: DefaultParams,
	New:      New,
}

// PerlinCycle is the animation state.
type PerlinCycle struct {
	baseHue float64
	time    float64
	gens    []*perlin.Perlin
}

// New seeds one generator per strip.
func New(_ *Params, layout animation.Layout) animation.Animation[Params] {
	return &PerlinCycle{gens: noise.PerStrip(len(layout))}
}

// Tick advances time and rotates the base hue.
func (a *PerlinCycle) Tick(p *Params) {
	a.time++
	a.baseHue = argb.WrapHue(a.baseHue + p.BaseHueIncr)
}

// Render samples hue and value per pixel.
func (a *PerlinCycle) Render(p *Params, pixels animation.Pixels) {
	for s, strip := range pixels {
		if len(strip) == 0 {
			continue
		}
		gen := a.gens[s]
		hueScale := noise.Scale(p.HueBound, len(strip))
		valScale := noise.Scale(p.ValBound, len(strip))
		for i := range strip {
			h := gen.Noise3D(float64(i)*hueScale, 0, a.time*p.HueTimeIncr)
			v := gen.Noise3D(0, float64(i)*valScale, a.time*p.ValTimeIncr)

			hue := argb.WrapHue(a.baseHue + h*p.HueDistRads*180/math.Pi)
			val := noise.Unit(v)
			strip[i] = argb.Pack(colorful.Hsv(hue, 1, val*val))
		}
	}
}
