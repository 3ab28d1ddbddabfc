// Package noise provides the pluggable noise functions the statistics codec
// uses to perturb its otherwise-deterministic frame sizes. The production
// default is a per-instance, seedable uniform multiplier built on
// gonum.org/v1/gonum/stat/distuv.
package noise

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// RandUniformMaxRatio is the default half-width of the uniform multiplier
// range: a frame of nominal size base is emitted with size in
// [(1-R)*base, (1+R)*base].
const RandUniformMaxRatio = 0.10

// Func perturbs a nominal frame size in bytes and returns the noisy size.
// Implementations must never return a negative value; callers clamp to zero
// regardless, as a last line of defense.
type Func func(base float64) float64

// NewUniform returns a Func that multiplies base by a value drawn uniformly
// from [1-ratio, 1+ratio], using a PRNG seeded with seed. Each call to
// NewUniform creates an independent PRNG: the default noise function must
// never share state across codec instances.
func NewUniform(ratio float64, seed uint64) Func {
	src := rand.NewSource(seed)
	dist := distuv.Uniform{
		Min: 1 - ratio,
		Max: 1 + ratio,
		Src: src,
	}
	return func(base float64) float64 {
		return base * dist.Rand()
	}
}

// NewDefaultUniform returns NewUniform(RandUniformMaxRatio, seed).
func NewDefaultUniform(seed uint64) Func {
	return NewUniform(RandUniformMaxRatio, seed)
}
