// Package onecolor fills every pixel with one fixed colour taken straight
// from the parameters.
package onecolor

import "github.com/nerrad567/ledbetter/animation"

// Params holds the channel levels, each clamped to 255 when rendered.
type Params struct {
	Red uint32 `param:"red" yaml:"red"`
	Grn uint32 `param:"grn" yaml:"grn"`
	Blu uint32 `param:"blu" yaml:"blu"`
}

// DefaultParams is black.
func DefaultParams() Params {
	return Params{}
}

// Definition registers the animation with the runtime.
var Definition = animation.Definition[Params]{
	Name:     "onecolor",
	Defaults: DefaultParams,
	New: func(*Params, animation.Layout) animation.Animation[Params] {
		return OneColor{}
	},
}

// OneColor is stateless.
type OneColor struct{}

// Tick does nothing; the colour is read from params on every render.
func (OneColor) Tick(*Params) {}

// Render writes 0x00RRGGBB into every pixel.
func (OneColor) Render(p *Params, pixels animation.Pixels) {
	c := Color(p)
	for _, strip := range pixels {
		for i := range strip {
			strip[i] = c
		}
	}
}

// Color packs the params as 0x00RRGGBB.
func Color(p *Params) uint32 {
	return min(p.Red, 255)<<16 | min(p.Grn, 255)<<8 | min(p.Blu, 255)
}
