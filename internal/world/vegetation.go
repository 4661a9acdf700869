package world

import (
	"math/rand"

	"voxelstream/internal/registry"
)

// VegetationPlacer decorates a single surface column with trees, grass or
// bushes according to its biome.
type VegetationPlacer struct {
	stamps *Stamps
}

// NewVegetationPlacer creates a placer drawing structures from stamps.
func NewVegetationPlacer(stamps *Stamps) *VegetationPlacer {
	if stamps == nil {
		stamps = DefaultStamps()
	}
	return &VegetationPlacer{stamps: stamps}
}

// Place decorates the column whose surface block is at local (x, y, z).
// Structures are anchored one block above the surface and every random
// draw comes from rng, so the result depends only on the rng state.
func (v *VegetationPlacer) Place(c *Chunk, x, y, z int, b Biome, rng *rand.Rand) {
	switch b {
	case Mountains, SnowyMountains, Ocean, Beach:
		return
	}
	info := b.Info()
	ay := y + 1

	if rng.Float64() < info.TreeDensity*0.1 {
		switch {
		case b == Forest:
			PlaceStamp(c, v.stamps.Oak, x, ay, z)
		case b == Plains && rng.Intn(5) == 0:
			PlaceStamp(c, v.stamps.Oak, x, ay, z)
		case b == SnowyPlains && rng.Intn(10) == 0:
			PlaceStamp(c, v.stamps.Oak, x, ay, z)
		}
		return
	}

	switch {
	case info.Top == registry.Grass:
		if rng.Intn(10) == 0 {
			PlaceStamp(c, v.stamps.TallGrass, x, ay, z)
		} else if rng.Intn(15) == 0 {
			c.SetBlock(x, ay, z, registry.ShortGrass)
		}
	case b == Desert:
		if rng.Intn(150) == 0 {
			PlaceStamp(c, v.stamps.BushShort, x, ay, z)
		}
	}
}
