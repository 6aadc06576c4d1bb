// Package argb packs colours into the 0xAARRGGBB layout the built-in
// animations render.
package argb

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// opaque is the alpha byte every packed colour carries.
const opaque = 0xFF << 24

// Pack converts c to an opaque 0xAARRGGBB value, clamping out-of-gamut input.
func Pack(c colorful.Color) uint32 {
	r, g, b := c.Clamped().RGB255()
	return opaque | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// WrapHue maps any angle in degrees into [0, 360).
func WrapHue(deg float64) float64 {
	h := math.Mod(deg, 360)
	if h < 0 {
		h += 360
	}
	return h
}
