package world

import (
	"math"

	"github.com/ojrac/opensimplex-go"
)

// NoiseField is a seeded gradient noise source. It holds only read-only
// permutation tables after construction, so a single instance is shared by
// every generation worker.
type NoiseField struct {
	seed int64
	src  opensimplex.Noise
}

// NewNoiseField builds the permutation tables for seed.
func NewNoiseField(seed int64) *NoiseField {
	return &NoiseField{seed: seed, src: opensimplex.New(seed)}
}

// Seed returns the seed the field was built from.
func (n *NoiseField) Seed() int64 { return n.seed }

// Sample2D returns noise in [-1, 1].
func (n *NoiseField) Sample2D(x, z float64) float64 {
	return clampUnit(n.src.Eval2(x, z))
}

// Sample3D returns noise in [-1, 1].
func (n *NoiseField) Sample3D(x, y, z float64) float64 {
	return clampUnit(n.src.Eval3(x, y, z))
}

// FBM sums octaves of 2D noise, doubling frequency per octave and scaling
// amplitude by persistence. The sum is normalised back into [-1, 1].
func (n *NoiseField) FBM(x, z float64, octaves int, persistence, scale float64) float64 {
	total, amp, freq, norm := 0.0, 1.0, scale, 0.0
	for range octaves {
		total += n.Sample2D(x*freq, z*freq) * amp
		norm += amp
		amp *= persistence
		freq *= 2
	}
	if norm == 0 {
		return 0
	}
	return total / norm
}

// FBM3D is the volumetric counterpart of FBM with a configurable lacunarity.
func (n *NoiseField) FBM3D(x, y, z float64, octaves int, persistence, lacunarity, scale float64) float64 {
	total, amp, freq, norm := 0.0, 1.0, scale, 0.0
	for range octaves {
		total += n.Sample3D(x*freq, y*freq, z*freq) * amp
		norm += amp
		amp *= persistence
		freq *= lacunarity
	}
	if norm == 0 {
		return 0
	}
	return total / norm
}

// Warped2D samples 2D noise after displacing the input by two decorrelated
// noise evaluations of up to strength world units.
func (n *NoiseField) Warped2D(x, z, scale, strength float64) float64 {
	ws := scale * 0.3
	qx := n.Sample2D(x*ws, z*ws)
	qz := n.Sample2D((x+500)*ws, (z+500)*ws)
	return n.Sample2D((x+qx*strength)*scale, (z+qz*strength)*scale)
}

func clampUnit(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// inverseLerp maps v from [a, b] to [0, 1], clamped.
func inverseLerp(a, b, v float64) float64 {
	if a == b {
		return 0
	}
	t := (v - a) / (b - a)
	return math.Max(0, math.Min(1, t))
}

// smootherstep is the quintic fade 6t^5 - 15t^4 + 10t^3.
func smootherstep(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

const golden64 = 0x9E3779B97F4A7C15

// fmix64 is the murmur3 finaliser.
func fmix64(v uint64) uint64 {
	v ^= v >> 33
	v *= 0xFF51AFD7ED558CCD
	v ^= v >> 33
	v *= 0xC4CEB9FE1A85EC53
	v ^= v >> 33
	return v
}

// cellHash folds a lattice cell into the seed one axis at a time, so
// permuted coordinates hash differently.
func cellHash(seed, x, y, z int64) uint64 {
	v := fmix64(uint64(seed) * golden64)
	v = fmix64(v + uint64(x)*golden64 + golden64)
	v = fmix64(v + uint64(y)*golden64 + golden64)
	return fmix64(v + uint64(z)*golden64 + golden64)
}

// chunkSeed derives the per-chunk vegetation RNG seed.
func chunkSeed(worldSeed int64, cx, cz int) int64 {
	return int64(cellHash(worldSeed, int64(cx), 0, int64(cz)) >> 1)
}

// Jitter returns a deterministic horizontal offset in [-0.15, 0.15] per axis
// for a plant at the given world cell.
func Jitter(wx, wy, wz int) (float32, float32) {
	h := cellHash(0, int64(wx), int64(wy), int64(wz))
	ox := (float32(h&15)/15 - 0.5) * 0.3
	oz := (float32((h>>4)&15)/15 - 0.5) * 0.3
	return ox, oz
}
