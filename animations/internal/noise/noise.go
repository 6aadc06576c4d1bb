// Package noise hands out one Perlin generator per strip, seeded from a
// fixed stream so the same layout always renders the same frames.
package noise

import (
	"math/rand/v2"

	"github.com/aquilax/go-perlin"
)

// Generator parameters shared by the Perlin animations.
const (
	alpha   = 2
	beta    = 2
	octaves = 3
)

// PerStrip returns n generators. The seeds are drawn in strip order from a
// PCG stream with a zero seed.
func PerStrip(n int) []*perlin.Perlin {
	rng := rand.New(rand.NewPCG(0, 0))
	gens := make([]*perlin.Perlin, n)
	for i := range gens {
		gens[i] = perlin.NewPerlin(alpha, beta, octaves, rng.Int64())
	}
	return gens
}

// Scale spreads bound noise units across a strip of the given length, so
// the last pixel lands on bound. A single pixel sits at the origin.
func Scale(bound float64, length int) float64 {
	if length < 2 {
		return 0
	}
	return bound / float64(length-1)
}

// Unit maps a noise sample from [-1, 1] into [0, 1], clamping overshoot.
func Unit(n float64) float64 {
	return min(max((n+1)/2, 0), 1)
}
