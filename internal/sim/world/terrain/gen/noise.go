package gen

import (
	"math"

	"voxelhold.dev/internal/sim/world/logic/mathx"
)

// smooth is the smoothstep fade used for lattice interpolation.
func smooth(t float64) float64 {
	return t * t * (3 - 2*t)
}

// ValueNoise samples smoothly interpolated lattice noise in [0,1).
// Lattice values come from the coordinate hash, so the same (seed,x,z)
// always yields the same value with no call-order dependency.
func ValueNoise(seed int64, x, z float64) float64 {
	fx := math.Floor(x)
	fz := math.Floor(z)
	x0 := int(fx)
	z0 := int(fz)
	tx := smooth(x - fx)
	tz := smooth(z - fz)

	v00 := mathx.Unit2(seed, x0, z0)
	v10 := mathx.Unit2(seed, x0+1, z0)
	v01 := mathx.Unit2(seed, x0, z0+1)
	v11 := mathx.Unit2(seed, x0+1, z0+1)

	a := v00 + (v10-v00)*tx
	b := v01 + (v11-v01)*tx
	return a + (b-a)*tz
}

// Fractal sums octaves of ValueNoise with halving amplitude and doubling
// frequency, normalized back into [0,1).
func Fractal(seed int64, x, z float64, octaves int) float64 {
	if octaves < 1 {
		octaves = 1
	}
	var sum, norm float64
	amp := 1.0
	freq := 1.0
	for i := 0; i < octaves; i++ {
		sum += amp * ValueNoise(seed+int64(i)*1013, x*freq, z*freq)
		norm += amp
		amp *= 0.5
		freq *= 2
	}
	return sum / norm
}
