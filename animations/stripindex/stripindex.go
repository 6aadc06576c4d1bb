// Package stripindex is a wiring test pattern. Each pixel shows its own
// address (strip*1000 + pixel), optionally shifted every frame, which makes
// swapped strips or reversed channels easy to spot on real hardware.
package stripindex

import "github.com/nerrad567/ledbetter/animation"

// Params controls the per-frame shift.
type Params struct {
	// Offset is added once per elapsed frame after the first.
	Offset uint32 `param:"offset" yaml:"offset"`
}

// DefaultParams holds the pattern still.
func DefaultParams() Params {
	return Params{}
}

// Definition registers the animation with the runtime.
var Definition = animation.Definition[Params]{
	Name:     "stripindex",
	Defaults: DefaultParams,
	New: func(*Params, animation.Layout) animation.Animation[Params] {
		return &StripIndex{}
	},
}

// StripIndex counts frames.
type StripIndex struct {
	frames uint32
}

// Tick counts one frame.
func (s *StripIndex) Tick(*Params) {
	s.frames++
}

// Render writes strip*1000 + pixel + offset*(frames-1).
func (s *StripIndex) Render(p *Params, pixels animation.Pixels) {
	shift := p.Offset * (max(s.frames, 1) - 1)
	for si, strip := range pixels {
		for i := range strip {
			strip[i] = uint32(si*1000+i) + shift
		}
	}
}
