// Package blue is a slow hue oscillation: every pixel shows the same colour,
// swinging between two hues on a cosine curve.
package blue

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/nerrad567/ledbetter/animation"
	"github.com/nerrad567/ledbetter/animations/internal/argb"
)

// Params tunes the oscillation.
type Params struct {
	// MinHue and MaxHue bound the swing, in degrees.
	MinHue float32 `param:"min_hue" yaml:"min_hue"`
	MaxHue float32 `param:"max_hue" yaml:"max_hue"`

	// Speed is the period of one full swing, in ticks. Zero holds MinHue.
	Speed uint32 `param:"speed" yaml:"speed"`
}

// DefaultParams returns a teal-to-blue swing over 50 ticks.
func DefaultParams() Params {
	return Params{MinHue: 140, MaxHue: 220, Speed: 50}
}

// Definition registers the animation with the runtime.
var Definition = animation.Definition[Params]{
	Name:     "blue",
	Defaults: DefaultParams,
	New:      New,
}

// Blue is the animation state.
type Blue struct {
	steps uint64
	color uint32
}

// New ignores the layout; every pixel gets the same colour.
func New(_ *Params, _ animation.Layout) animation.Animation[Params] {
	return &Blue{color: argb.Pack(colorful.Color{})}
}

// Hue returns the hue in degrees for the given step.
func Hue(p *Params, step uint64) float64 {
	if p.Speed == 0 {
		return float64(p.MinHue)
	}
	phase := float64(step) * 2 * math.Pi / float64(p.Speed)
	return (1-math.Cos(phase))/2*float64(p.MaxHue-p.MinHue) + float64(p.MinHue)
}

// Tick computes this step's colour, then advances the step counter.
func (b *Blue) Tick(p *Params) {
	b.color = argb.Pack(colorful.Hsv(argb.WrapHue(Hue(p, b.steps)), 1, 1))
	b.steps++
}

// Render fills every pixel.
func (b *Blue) Render(_ *Params, pixels animation.Pixels) {
	for _, strip := range pixels {
		for i := range strip {
			strip[i] = b.color
		}
	}
}
